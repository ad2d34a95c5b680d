package bot

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"routinebot/internal/i18n"
	"routinebot/internal/logger"
	"routinebot/internal/models"
	"routinebot/internal/routine"
	"routinebot/internal/session"
	"routinebot/internal/slides"
)

const chatID int64 = 42

type sent struct {
	chatID  int64
	text    string
	choices []Choice
	doc     string
	data    []byte
}

// fakeNotifier записывает исходящие сообщения
type fakeNotifier struct {
	mu       sync.Mutex
	messages []sent
	answered []string
	cleared  []int
}

func (f *fakeNotifier) Send(ctx context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sent{chatID: chatID, text: text})
	return nil
}

func (f *fakeNotifier) SendWithChoices(ctx context.Context, chatID int64, text string, choices []Choice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sent{chatID: chatID, text: text, choices: choices})
	return nil
}

func (f *fakeNotifier) SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sent{chatID: chatID, text: caption, doc: name, data: data})
	return nil
}

func (f *fakeNotifier) AnswerCallback(ctx context.Context, callbackID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered = append(f.answered, callbackID)
	return nil
}

func (f *fakeNotifier) ClearChoices(ctx context.Context, chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, messageID)
	return nil
}

func (f *fakeNotifier) last() sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return sent{}
	}
	return f.messages[len(f.messages)-1]
}

func (f *fakeNotifier) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.messages))
	for i, m := range f.messages {
		out[i] = m.text
	}
	return out
}

// fakeBackend отвечает одним и тем же JSON и считает вызовы
type fakeBackend struct {
	mu    sync.Mutex
	reply string
	calls int
}

func (f *fakeBackend) Generate(ctx context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.reply, nil
}

// fakeDocs DocumentService в памяти. onCopy вызывается после копирования шаблона.
type fakeDocs struct {
	mu      sync.Mutex
	batches [][]slides.Operation
	ctxErrs []error
	copies  int
	onCopy  func()
}

func (f *fakeDocs) Copy(ctx context.Context, templateID, name string) (string, error) {
	f.mu.Lock()
	f.copies++
	f.mu.Unlock()
	if f.onCopy != nil {
		f.onCopy()
	}
	return "pres1", nil
}

func (f *fakeDocs) PageCount(ctx context.Context, documentID string) (int, error) {
	return 1, nil
}

func (f *fakeDocs) BatchUpdate(ctx context.Context, documentID string, ops []slides.Operation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, ops)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	return nil
}

func (f *fakeDocs) SetPermissions(ctx context.Context, documentID string) error {
	return nil
}

// countingCreator считает вызовы генератора
type countingCreator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingCreator) Create(ctx context.Context, days []models.Day) (models.PresentationResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return models.PresentationResult{}, c.err
	}
	return models.NewPresentationResult("abc"), nil
}

type panicParser struct{}

func (panicParser) Parse(ctx context.Context, text string) (models.RoutineSet, error) {
	panic("boom")
}

func text(s string) Update {
	return Update{Message: &IncomingMessage{ChatID: chatID, Text: s, UserName: "Ana"}}
}

func press(action string) Update {
	return Update{Callback: &Callback{ID: "cb1", ChatID: chatID, MessageID: 7, Action: action}}
}

func llmPipeline(reply string) (*routine.Pipeline, *fakeBackend) {
	backend := &fakeBackend{reply: reply}
	return routine.NewPipeline(routine.NewLLMStructurer(backend, logger.Nop()), logger.Nop()), backend
}

const pullUps = `[{"ejercicio": "Pull ups", "series": "4", "repeticiones": ["10"]}]`

func TestHandlerRoutineToPresentation(t *testing.T) {
	ctx := context.Background()
	pipeline, _ := llmPipeline(pullUps)
	docs := &fakeDocs{}
	gen := slides.NewGenerator(docs, "tmpl", slides.DefaultLayout(), logger.Nop())
	store := session.NewStore()
	n := &fakeNotifier{}
	h := NewHandler(pipeline, gen, store, n, logger.Nop())

	if got := h.HandleUpdate(ctx, text("Pull ups 4 series de 10 reps")); got != StatusAwaiting {
		t.Fatalf("status = %q, want %q", got, StatusAwaiting)
	}
	if store.State(chatID) != session.Pending {
		t.Errorf("state = %v, want Pending", store.State(chatID))
	}

	preview := n.last()
	if !strings.Contains(preview.text, "• Pull ups - 4x") {
		t.Errorf("preview = %q", preview.text)
	}
	wantChoices := []Choice{
		{Label: i18n.T("button_confirm", i18n.DefaultLang), Action: ActionConfirm},
		{Label: i18n.T("button_cancel", i18n.DefaultLang), Action: ActionCancel},
	}
	if !reflect.DeepEqual(preview.choices, wantChoices) {
		t.Errorf("choices = %+v", preview.choices)
	}

	if got := h.HandleUpdate(ctx, press(ActionConfirm)); got != StatusSuccess {
		t.Fatalf("confirm status = %q, want %q", got, StatusSuccess)
	}
	if store.State(chatID) != session.Idle {
		t.Errorf("state after confirm = %v, want Idle", store.State(chatID))
	}
	if !strings.Contains(n.last().text, models.PresentationURLPrefix+"pres1") {
		t.Errorf("success message = %q", n.last().text)
	}
	if len(n.answered) != 1 || len(n.cleared) != 1 || n.cleared[0] != 7 {
		t.Errorf("answered = %v, cleared = %v", n.answered, n.cleared)
	}

	if len(docs.batches) != 2 {
		t.Fatalf("batches = %d, want 2", len(docs.batches))
	}
	counts := slides.Count(docs.batches[0])
	want := map[string]int{
		"slides.CreateSlide": 1,
		"slides.CreateShape": 1,
		"slides.CreateTable": 1,
		"slides.InsertText":  7,
	}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("content counts = %v, want %v", counts, want)
	}
}

func TestHandlerConfirmSurvivesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipeline, _ := llmPipeline(pullUps)
	docs := &fakeDocs{onCopy: cancel}
	gen := slides.NewGenerator(docs, "tmpl", slides.DefaultLayout(), logger.Nop())
	n := &fakeNotifier{}
	h := NewHandler(pipeline, gen, session.NewStore(), n, logger.Nop())

	if got := h.HandleUpdate(ctx, text("Pull ups 4x10")); got != StatusAwaiting {
		t.Fatalf("status = %q, want %q", got, StatusAwaiting)
	}
	if got := h.HandleUpdate(ctx, press(ActionConfirm)); got != StatusSuccess {
		t.Fatalf("confirm status = %q, want %q", got, StatusSuccess)
	}
	if ctx.Err() == nil {
		t.Fatal("context was not cancelled during Copy")
	}
	if len(docs.batches) != 2 {
		t.Fatalf("batches = %d, want 2", len(docs.batches))
	}
	for i, err := range docs.ctxErrs {
		if err != nil {
			t.Errorf("batch %d context error = %v", i, err)
		}
	}
	if !strings.Contains(n.last().text, models.PresentationURLPrefix+"pres1") {
		t.Errorf("success message = %q", n.last().text)
	}
}

func TestHandlerConcurrentConfirm(t *testing.T) {
	const presses = 20
	ctx := context.Background()
	pipeline, _ := llmPipeline(pullUps)
	creator := &countingCreator{}
	store := session.NewStore()
	h := NewHandler(pipeline, creator, store, &fakeNotifier{}, logger.Nop())

	if got := h.HandleUpdate(ctx, text("Pull ups 4x10")); got != StatusAwaiting {
		t.Fatalf("status = %q, want %q", got, StatusAwaiting)
	}

	statuses := make([]Status, presses)
	var wg sync.WaitGroup
	for i := 0; i < presses; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			statuses[i] = h.HandleUpdate(ctx, press(ActionConfirm))
		}(i)
	}
	wg.Wait()

	if creator.calls != 1 {
		t.Errorf("Create called %d times, want 1", creator.calls)
	}
	counts := map[Status]int{}
	for _, s := range statuses {
		counts[s]++
	}
	if counts[StatusSuccess] != 1 || counts[StatusNoPending] != presses-1 {
		t.Errorf("statuses = %v", counts)
	}
	if store.State(chatID) != session.Idle {
		t.Errorf("state = %v, want Idle", store.State(chatID))
	}
}

func TestHandlerConcurrentRoutines(t *testing.T) {
	const messages = 20
	ctx := context.Background()
	pipeline, backend := llmPipeline(pullUps)
	store := session.NewStore()
	h := NewHandler(pipeline, &countingCreator{}, store, &fakeNotifier{}, logger.Nop())

	statuses := make([]Status, messages)
	var wg sync.WaitGroup
	for i := 0; i < messages; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			statuses[i] = h.HandleUpdate(ctx, text("Pull ups 4x10"))
		}(i)
	}
	wg.Wait()

	if backend.calls != 1 {
		t.Errorf("backend calls = %d, want 1", backend.calls)
	}
	counts := map[Status]int{}
	for _, s := range statuses {
		counts[s]++
	}
	if counts[StatusAwaiting] != 1 || counts[StatusPending] != messages-1 {
		t.Errorf("statuses = %v", counts)
	}
	if store.State(chatID) != session.Pending || store.Len() != 1 {
		t.Errorf("state = %v, len = %d, want Pending and 1", store.State(chatID), store.Len())
	}
}

func TestHandlerCancelCallback(t *testing.T) {
	ctx := context.Background()
	pipeline, _ := llmPipeline(pullUps)
	creator := &countingCreator{}
	store := session.NewStore()
	n := &fakeNotifier{}
	h := NewHandler(pipeline, creator, store, n, logger.Nop())

	h.HandleUpdate(ctx, text("Pull ups 4x10"))
	if got := h.HandleUpdate(ctx, press(ActionCancel)); got != StatusCancelled {
		t.Fatalf("status = %q, want %q", got, StatusCancelled)
	}
	if store.State(chatID) != session.Idle {
		t.Errorf("state = %v, want Idle", store.State(chatID))
	}
	if creator.calls != 0 {
		t.Errorf("generator calls = %d, want 0", creator.calls)
	}

	if got := h.HandleUpdate(ctx, press(ActionConfirm)); got != StatusNoPending {
		t.Errorf("confirm after cancel = %q, want %q", got, StatusNoPending)
	}
	if creator.calls != 0 {
		t.Errorf("generator called without pending routine")
	}
}

func TestHandlerPendingUnchanged(t *testing.T) {
	ctx := context.Background()
	pipeline, backend := llmPipeline(pullUps)
	store := session.NewStore()
	n := &fakeNotifier{}
	h := NewHandler(pipeline, &countingCreator{}, store, n, logger.Nop())

	h.HandleUpdate(ctx, text("Pull ups 4x10"))
	before, _ := store.Peek(chatID)

	if got := h.HandleUpdate(ctx, text("Remo 4/12")); got != StatusPending {
		t.Fatalf("status = %q, want %q", got, StatusPending)
	}
	after, _ := store.Peek(chatID)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("pending routine changed: %+v -> %+v", before, after)
	}
	if backend.calls != 1 {
		t.Errorf("backend calls = %d, want 1", backend.calls)
	}
	if n.last().text != i18n.T("already_pending", i18n.DefaultLang) {
		t.Errorf("reply = %q", n.last().text)
	}
}

func TestHandlerParseFailureLeavesIdle(t *testing.T) {
	ctx := context.Background()
	pipeline, _ := llmPipeline("no es json")
	creator := &countingCreator{}
	store := session.NewStore()
	n := &fakeNotifier{}
	h := NewHandler(pipeline, creator, store, n, logger.Nop())

	if got := h.HandleUpdate(ctx, text("Press 4x10")); got != StatusError {
		t.Fatalf("status = %q, want %q", got, StatusError)
	}
	if store.State(chatID) != session.Idle || store.Len() != 0 {
		t.Errorf("state = %v, len = %d", store.State(chatID), store.Len())
	}
	if n.last().text != i18n.T("error_parse", i18n.DefaultLang) {
		t.Errorf("reply = %q", n.last().text)
	}
}

func TestHandlerGeneratorFailure(t *testing.T) {
	ctx := context.Background()
	pipeline, _ := llmPipeline(pullUps)
	creator := &countingCreator{err: &models.PresentationError{Step: "copy", Err: errors.New("quota")}}
	store := session.NewStore()
	n := &fakeNotifier{}
	h := NewHandler(pipeline, creator, store, n, logger.Nop())

	h.HandleUpdate(ctx, text("Pull ups 4x10"))
	if got := h.HandleUpdate(ctx, press(ActionConfirm)); got != StatusError {
		t.Fatalf("status = %q, want %q", got, StatusError)
	}
	if store.State(chatID) != session.Idle {
		t.Errorf("state = %v, want Idle", store.State(chatID))
	}
	if n.last().text != i18n.T("error_slides", i18n.DefaultLang) {
		t.Errorf("reply = %q", n.last().text)
	}
}

func TestHandlerNilGenerator(t *testing.T) {
	ctx := context.Background()
	pipeline, _ := llmPipeline(pullUps)
	n := &fakeNotifier{}
	h := NewHandler(pipeline, nil, session.NewStore(), n, logger.Nop())

	h.HandleUpdate(ctx, text("Pull ups 4x10"))
	if got := h.HandleUpdate(ctx, press(ActionConfirm)); got != StatusError {
		t.Errorf("status = %q, want %q", got, StatusError)
	}
}

func TestHandlerCommands(t *testing.T) {
	es := i18n.DefaultLang
	tests := []struct {
		name    string
		pending bool
		input   string
		want    Status
		reply   string
	}{
		{"start", false, "/start", StatusWelcome, i18n.T("welcome", es)},
		{"inicio with bot name", false, "/inicio@rutina_bot", StatusWelcome, i18n.T("welcome", es)},
		{"help", false, "/ayuda", StatusHelp, i18n.T("help", es)},
		{"help upper", false, "/HELP", StatusHelp, i18n.T("help", es)},
		{"cancel idle", false, "/cancelar", StatusCancelled, i18n.T("no_pending", es)},
		{"cancel pending", true, "/cancel", StatusCancelled, i18n.T("cancelled", es)},
		{"status idle", false, "/estado", StatusState, i18n.T("no_pending", es)},
		{"status pending", true, "/status", StatusState, i18n.T("state_pending", es)},
		{"export idle", false, "/exportar", StatusNoPending, i18n.T("no_pending", es)},
		{"unknown", false, "/foo", StatusUnknownCommand, i18n.T("unknown_command", es)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			pipeline, _ := llmPipeline(pullUps)
			n := &fakeNotifier{}
			h := NewHandler(pipeline, &countingCreator{}, session.NewStore(), n, logger.Nop())
			if tt.pending {
				h.HandleUpdate(ctx, text("Pull ups 4x10"))
			}

			if got := h.HandleUpdate(ctx, text(tt.input)); got != tt.want {
				t.Errorf("status = %q, want %q", got, tt.want)
			}
			if got := n.last().text; got != tt.reply {
				t.Errorf("reply = %q, want %q", got, tt.reply)
			}
		})
	}
}

func TestHandlerExport(t *testing.T) {
	ctx := context.Background()
	pipeline, _ := llmPipeline(pullUps)
	store := session.NewStore()
	n := &fakeNotifier{}
	h := NewHandler(pipeline, &countingCreator{}, store, n, logger.Nop())

	h.HandleUpdate(ctx, text("Pull ups 4x10"))
	if got := h.HandleUpdate(ctx, text("/exportar")); got != StatusExported {
		t.Fatalf("status = %q, want %q", got, StatusExported)
	}
	doc := n.last()
	if doc.doc != "rutina.xlsx" || len(doc.data) == 0 {
		t.Errorf("document = %q (%d bytes)", doc.doc, len(doc.data))
	}
	if store.State(chatID) != session.Pending {
		t.Errorf("export changed state to %v", store.State(chatID))
	}
}

func TestHandlerEnglish(t *testing.T) {
	pipeline, _ := llmPipeline(pullUps)
	n := &fakeNotifier{}
	h := NewHandler(pipeline, &countingCreator{}, session.NewStore(), n, logger.Nop())

	u := Update{Message: &IncomingMessage{ChatID: chatID, Text: "/help", LanguageCode: "en-GB"}}
	h.HandleUpdate(context.Background(), u)
	if got := n.last().text; got != i18n.T("help", i18n.LangEnglish) {
		t.Errorf("reply = %q", got)
	}
}

func TestHandlerRecoversPanic(t *testing.T) {
	store := session.NewStore()
	h := NewHandler(panicParser{}, nil, store, &fakeNotifier{}, logger.Nop())

	if got := h.HandleUpdate(context.Background(), text("Press 4x10")); got != StatusError {
		t.Fatalf("status = %q, want %q", got, StatusError)
	}

	// блокировка чата снята после паники
	done := make(chan struct{})
	go func() {
		unlock := store.Lock(chatID)
		unlock()
		close(done)
	}()
	<-done
}

func TestHandlerIgnoresEmpty(t *testing.T) {
	n := &fakeNotifier{}
	h := NewHandler(panicParser{}, nil, session.NewStore(), n, logger.Nop())

	if got := h.HandleUpdate(context.Background(), text("   ")); got != StatusEmpty {
		t.Errorf("status = %q, want %q", got, StatusEmpty)
	}
	if got := h.HandleUpdate(context.Background(), Update{}); got != StatusOK {
		t.Errorf("status = %q, want %q", got, StatusOK)
	}
	if len(n.texts()) != 0 {
		t.Errorf("messages = %v, want none", n.texts())
	}
}

func TestMessageKey(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{models.ErrEmptyInput, "error_empty_input"},
		{models.ErrEmptyRoutine, "error_empty_routine"},
		{&models.StructuringError{Block: 1, Err: &models.MalformedResponseError{Raw: "x", Err: errors.New("bad")}}, "error_parse"},
		{&models.ValidationError{Field: "name"}, "error_parse"},
		{&models.PresentationError{Step: "style", Err: errors.New("x")}, "error_slides"},
		{errors.New("network"), "error_internal"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := MessageKey(tt.err); got != tt.want {
				t.Errorf("MessageKey(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestFormatPreview(t *testing.T) {
	var exercises []models.Exercise
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		ex, _ := models.NewExercise(name, "3", []string{"10"})
		exercises = append(exercises, ex)
	}
	days := models.RoutineSet{{Number: 1, Exercises: exercises}}

	got := FormatPreview(days, i18n.DefaultLang)
	if !strings.Contains(got, "• E - 3x") || strings.Contains(got, "• F - 3x") {
		t.Errorf("preview should list five exercises:\n%s", got)
	}
	if !strings.Contains(got, i18n.Tf("preview_more", i18n.DefaultLang, 2)) {
		t.Errorf("preview missing overflow line:\n%s", got)
	}
	if !strings.HasSuffix(got, i18n.T("preview_question", i18n.DefaultLang)) {
		t.Errorf("preview should end with the question:\n%s", got)
	}
}
