package models

// PresentationURLPrefix адрес презентации Google Slides без идентификатора
const PresentationURLPrefix = "https://docs.google.com/presentation/d/"

// PresentationResult созданная презентация
type PresentationResult struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// NewPresentationResult строит результат, URL однозначно определяется по ID
func NewPresentationResult(id string) PresentationResult {
	return PresentationResult{ID: id, URL: PresentationURLPrefix + id}
}
