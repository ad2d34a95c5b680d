package slides

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	gslides "google.golang.org/api/slides/v1"

	"routinebot/internal/logger"
)

const unitPT = "PT"

// GoogleService реализация DocumentService поверх Google Drive v3 и Slides v1
type GoogleService struct {
	slides *gslides.Service
	drive  *drive.Service
	log    *logger.Logger
}

// NewGoogleService создаёт клиента Drive и Slides.
// credentials - JSON или путь к файлу; tokenPath задаёт OAuth-токен пользователя,
// без него credentials считается ключом сервисного аккаунта.
func NewGoogleService(ctx context.Context, credentials, tokenPath string, log *logger.Logger) (*GoogleService, error) {
	client, err := HTTPClient(ctx, credentials, tokenPath)
	if err != nil {
		return nil, err
	}

	slidesSrv, err := gslides.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Slides сервиса: %w", err)
	}

	driveSrv, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Drive сервиса: %w", err)
	}

	return &GoogleService{slides: slidesSrv, drive: driveSrv, log: log}, nil
}

func (s *GoogleService) Copy(ctx context.Context, templateID, name string) (string, error) {
	copied, err := s.drive.Files.Copy(templateID, &drive.File{Name: name}).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("ошибка копирования шаблона: %w", err)
	}
	s.log.Info("Шаблон скопирован", "presentation_id", copied.Id)
	return copied.Id, nil
}

func (s *GoogleService) PageCount(ctx context.Context, documentID string) (int, error) {
	presentation, err := s.slides.Presentations.Get(documentID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения презентации: %w", err)
	}
	return len(presentation.Slides), nil
}

func (s *GoogleService) BatchUpdate(ctx context.Context, documentID string, ops []Operation) error {
	requests, err := toRequests(ops)
	if err != nil {
		return err
	}
	_, err = s.slides.Presentations.BatchUpdate(documentID, &gslides.BatchUpdatePresentationRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("ошибка batchUpdate: %w", err)
	}
	s.log.Debug("Пакет применён", "presentation_id", documentID, "requests", len(requests))
	return nil
}

func (s *GoogleService) SetPermissions(ctx context.Context, documentID string) error {
	_, err := s.drive.Permissions.Create(documentID, &drive.Permission{
		Type: "anyone",
		Role: "writer",
	}).SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("ошибка настройки доступа: %w", err)
	}
	return nil
}

// toRequests переводит операции в запросы Slides API с сохранением порядка
func toRequests(ops []Operation) ([]*gslides.Request, error) {
	requests := make([]*gslides.Request, 0, len(ops))
	for i, op := range ops {
		req, err := toRequest(op)
		if err != nil {
			return nil, fmt.Errorf("операция %d: %w", i, err)
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func toRequest(op Operation) (*gslides.Request, error) {
	switch o := op.(type) {
	case CreateSlide:
		req := &gslides.CreateSlideRequest{
			ObjectId:        o.ObjectID,
			InsertionIndex:  int64(o.InsertionIndex),
			ForceSendFields: []string{"InsertionIndex"},
		}
		if o.LayoutID != "" {
			req.SlideLayoutReference = &gslides.LayoutReference{LayoutId: o.LayoutID}
		}
		return &gslides.Request{CreateSlide: req}, nil

	case CreateShape:
		return &gslides.Request{CreateShape: &gslides.CreateShapeRequest{
			ObjectId:          o.ObjectID,
			ShapeType:         o.ShapeType,
			ElementProperties: elementProperties(o.PageID, o.Size, o.Position),
		}}, nil

	case CreateTable:
		return &gslides.Request{CreateTable: &gslides.CreateTableRequest{
			ObjectId:          o.ObjectID,
			Rows:              int64(o.Rows),
			Columns:           int64(o.Columns),
			ElementProperties: elementProperties(o.PageID, o.Size, o.Position),
		}}, nil

	case InsertText:
		return &gslides.Request{InsertText: &gslides.InsertTextRequest{
			ObjectId:     o.ObjectID,
			CellLocation: cellLocation(o.Cell),
			Text:         o.Text,
		}}, nil

	case UpdateTextStyle:
		style, fields := textStyle(o.Style)
		if fields == "" {
			return nil, fmt.Errorf("updateTextStyle %s без полей", o.ObjectID)
		}
		return &gslides.Request{UpdateTextStyle: &gslides.UpdateTextStyleRequest{
			ObjectId:     o.ObjectID,
			CellLocation: cellLocation(o.Cell),
			Style:        style,
			TextRange:    &gslides.Range{Type: "ALL"},
			Fields:       fields,
		}}, nil

	case UpdateShapeProperties:
		return &gslides.Request{UpdateShapeProperties: &gslides.UpdateShapePropertiesRequest{
			ObjectId: o.ObjectID,
			ShapeProperties: &gslides.ShapeProperties{
				ShapeBackgroundFill: &gslides.ShapeBackgroundFill{
					SolidFill: &gslides.SolidFill{Color: opaque(o.Fill)},
				},
			},
			Fields: "shapeBackgroundFill.solidFill.color",
		}}, nil

	case UpdateTableCellProperties:
		return &gslides.Request{UpdateTableCellProperties: &gslides.UpdateTableCellPropertiesRequest{
			ObjectId: o.ObjectID,
			TableRange: &gslides.TableRange{
				Location:   cellLocation(&o.Location),
				RowSpan:    int64(o.RowSpan),
				ColumnSpan: int64(o.ColumnSpan),
			},
			TableCellProperties: &gslides.TableCellProperties{
				TableCellBackgroundFill: &gslides.TableCellBackgroundFill{
					SolidFill: &gslides.SolidFill{Color: opaque(o.Fill)},
				},
			},
			Fields: "tableCellBackgroundFill.solidFill.color",
		}}, nil

	case UpdateTableColumnProperties:
		return &gslides.Request{UpdateTableColumnProperties: &gslides.UpdateTableColumnPropertiesRequest{
			ObjectId:      o.ObjectID,
			ColumnIndices: []int64{int64(o.ColumnIndex)},
			TableColumnProperties: &gslides.TableColumnProperties{
				ColumnWidth: &gslides.Dimension{Magnitude: o.Width, Unit: unitPT},
			},
			Fields: "columnWidth",
		}}, nil
	}
	return nil, fmt.Errorf("неизвестная операция %T", op)
}

func elementProperties(pageID string, size Size, pos Position) *gslides.PageElementProperties {
	return &gslides.PageElementProperties{
		PageObjectId: pageID,
		Size: &gslides.Size{
			Width:  &gslides.Dimension{Magnitude: size.Width, Unit: unitPT},
			Height: &gslides.Dimension{Magnitude: size.Height, Unit: unitPT},
		},
		Transform: &gslides.AffineTransform{
			ScaleX:     1,
			ScaleY:     1,
			TranslateX: pos.X,
			TranslateY: pos.Y,
			Unit:       unitPT,
		},
	}
}

// cellLocation индексы 0 отправляются явно, иначе omitempty их выбросит
func cellLocation(c *CellLocation) *gslides.TableCellLocation {
	if c == nil {
		return nil
	}
	return &gslides.TableCellLocation{
		RowIndex:        int64(c.Row),
		ColumnIndex:     int64(c.Column),
		ForceSendFields: []string{"RowIndex", "ColumnIndex"},
	}
}

func opaque(c RGB) *gslides.OpaqueColor {
	return &gslides.OpaqueColor{RgbColor: &gslides.RgbColor{
		Red:             c.Red,
		Green:           c.Green,
		Blue:            c.Blue,
		ForceSendFields: []string{"Red", "Green", "Blue"},
	}}
}

// textStyle стиль и маска полей для updateTextStyle
func textStyle(s TextStyle) (*gslides.TextStyle, string) {
	style := &gslides.TextStyle{}
	var fields []string
	if s.Bold {
		style.Bold = true
		fields = append(fields, "bold")
	}
	if s.FontSize > 0 {
		style.FontSize = &gslides.Dimension{Magnitude: s.FontSize, Unit: unitPT}
		fields = append(fields, "fontSize")
	}
	if s.Foreground != nil {
		style.ForegroundColor = &gslides.OptionalColor{OpaqueColor: opaque(*s.Foreground)}
		fields = append(fields, "foregroundColor")
	}
	return style, strings.Join(fields, ",")
}
