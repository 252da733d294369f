package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/chaski/registry/internal/model"
)

var (
	ErrSubmitInProgress = errors.New("a submission is already in progress")
	ErrUnknownField     = errors.New("unknown field")
	ErrUploadFailed     = errors.New("image upload failed")
	// ErrNoImageURL is reported when the upload gateway answers without a URL.
	ErrNoImageURL = errors.New("No se recibió URL de la imagen")
)

// ValidationError reports a required field left blank.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// State is a step of one submission.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateUploading
	StateSaving
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateUploading:
		return "uploading"
	case StateSaving:
		return "saving"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// UploadPolicy decides what a failed image upload does to the submission.
type UploadPolicy int

const (
	// ContinueWithoutAttachment saves the record with an empty attachment
	// and reports a warning.
	ContinueWithoutAttachment UploadPolicy = iota
	// AbortOnUploadFailure ends the submission as failed.
	AbortOnUploadFailure
)

// Image is the file attached to a form.
type Image struct {
	Name string
	Data []byte
}

// Outcome is what one Submit produced.
type Outcome struct {
	State    State
	Record   *model.Record
	Message  string
	Warnings []string
}

// Option configures a Form.
type Option func(*Form)

// WithUploadPolicy sets the upload failure policy.
func WithUploadPolicy(p UploadPolicy) Option {
	return func(f *Form) { f.policy = p }
}

// WithOnSuccess registers a callback run after each successful save.
func WithOnSuccess(fn func(*model.Record)) Option {
	return func(f *Form) { f.onSuccess = fn }
}

// WithOnTransition registers a callback run on every state change.
func WithOnTransition(fn func(from, to State)) Option {
	return func(f *Form) { f.onTransition = fn }
}

// WithLogger sets the form's logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Form) { f.logger = l }
}

// Form holds the values of one entity form and submits them.
type Form struct {
	entity       Entity
	gw           Gateway
	policy       UploadPolicy
	onSuccess    func(*model.Record)
	onTransition func(from, to State)
	logger       *slog.Logger

	submitting atomic.Bool

	mu     sync.Mutex
	state  State
	values map[string]string
	links  map[string][]string
	image  *Image
}

// NewForm creates a form for entity e that talks to gw.
func NewForm(e Entity, gw Gateway, opts ...Option) *Form {
	f := &Form{
		entity: e,
		gw:     gw,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With(slog.String("component", "form"), slog.String("entity", e.Name))
	f.reset()
	return f
}

// Entity returns the form's definition.
func (f *Form) Entity() Entity { return f.entity }

// State returns the current submission state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Set stores a text value.
func (f *Form) Set(name, value string) error {
	field, ok := f.entity.Field(name)
	if !ok || field.Kind != Text {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	f.mu.Lock()
	f.values[name] = value
	f.mu.Unlock()
	return nil
}

// Link stores the record ids of a link field. Calling it with no ids clears
// the field.
func (f *Form) Link(name string, ids ...string) error {
	field, ok := f.entity.Field(name)
	if !ok || field.Kind != Link {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	f.mu.Lock()
	f.links[name] = append([]string(nil), ids...)
	f.mu.Unlock()
	return nil
}

// Value returns the text value of name.
func (f *Form) Value(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[name]
}

// Attach sets the image to upload on the next submit.
func (f *Form) Attach(img Image) {
	f.mu.Lock()
	f.image = &img
	f.mu.Unlock()
}

// Image returns the attached image, if any.
func (f *Form) Image() (Image, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.image == nil {
		return Image{}, false
	}
	return *f.image, true
}

// Submit validates the form, uploads the image if one is attached and saves
// the record. Entered values survive a failed submission. A concurrent
// Submit on the same form returns ErrSubmitInProgress.
func (f *Form) Submit(ctx context.Context) (*Outcome, error) {
	if !f.submitting.CompareAndSwap(false, true) {
		return nil, ErrSubmitInProgress
	}
	defer f.submitting.Store(false)

	f.transition(StateValidating)
	if verr := f.validate(); verr != nil {
		f.transition(StateIdle)
		return &Outcome{State: StateIdle, Message: verr.Message}, verr
	}

	out := &Outcome{}
	attachment := model.Empty
	if img, ok := f.Image(); ok {
		f.transition(StateUploading)
		url, err := f.gw.Upload(ctx, img.Name, bytes.NewReader(img.Data))
		if err == nil && strings.TrimSpace(url) == "" {
			err = ErrNoImageURL
		}
		switch {
		case err == nil:
			attachment = model.NewAttachment(url)
		case f.policy == AbortOnUploadFailure:
			f.logger.Warn("image upload failed, submission aborted", slog.String("error", err.Error()))
			f.transition(StateFailed)
			out.State = StateFailed
			out.Message = f.entity.uploadWarning(err)
			return out, fmt.Errorf("%w: %w", ErrUploadFailed, err)
		default:
			f.logger.Warn("image upload failed, saving without attachment", slog.String("error", err.Error()))
			out.Warnings = append(out.Warnings, f.entity.uploadWarning(err))
		}
	}

	f.transition(StateSaving)
	rec, err := f.gw.Create(ctx, f.entity.Table, f.fields(attachment))
	if err != nil {
		f.logger.Error("record save failed", slog.String("error", err.Error()))
		f.transition(StateFailed)
		out.State = StateFailed
		out.Message = f.entity.failure(err)
		return out, fmt.Errorf("save %s: %w", f.entity.Table, err)
	}

	f.mu.Lock()
	f.reset()
	f.mu.Unlock()
	f.transition(StateSucceeded)
	f.logger.Info("record saved", slog.String("id", rec.ID))

	out.State = StateSucceeded
	out.Record = rec
	out.Message = f.entity.Success
	if f.onSuccess != nil {
		f.onSuccess(rec)
	}
	return out, nil
}

func (f *Form) validate() *ValidationError {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, field := range f.entity.Fields {
		if field.Required == "" {
			continue
		}
		var blank bool
		switch field.Kind {
		case Link:
			blank = true
			for _, id := range f.links[field.Name] {
				if strings.TrimSpace(id) != "" {
					blank = false
					break
				}
			}
		default:
			blank = strings.TrimSpace(f.values[field.Name]) == ""
		}
		if blank {
			return &ValidationError{Field: field.Name, Message: field.Required}
		}
	}
	return nil
}

func (f *Form) fields(attachment model.Attachment) model.Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(model.Fields, len(f.entity.Fields)+1)
	for _, field := range f.entity.Fields {
		switch field.Kind {
		case Link:
			ids := []string{}
			for _, id := range f.links[field.Name] {
				if id != "" {
					ids = append(ids, id)
				}
			}
			out[field.Name] = ids
		default:
			out[field.Name] = f.values[field.Name]
		}
	}
	out[f.entity.Attachment] = attachment
	return out
}

// reset restores defaults and drops the image. Callers hold mu, except
// NewForm.
func (f *Form) reset() {
	f.values = make(map[string]string, len(f.entity.Fields))
	f.links = make(map[string][]string)
	for _, field := range f.entity.Fields {
		if field.Kind == Text {
			f.values[field.Name] = field.Default
		}
	}
	f.image = nil
}

func (f *Form) transition(to State) {
	f.mu.Lock()
	from := f.state
	f.state = to
	f.mu.Unlock()
	if f.onTransition != nil {
		f.onTransition(from, to)
	}
}
