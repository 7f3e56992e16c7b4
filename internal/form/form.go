// Package form holds the scenario form view: the inputs, the busy flag, and
// the outcome of the most recent submission. HTTP pages, WebSocket sessions
// and the terminal client all drive the same Form.
package form

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"scenario-analysis/web/internal/analysis"
)

// Phase is the position of a form in its submit cycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseSuccess    Phase = "success"
	PhaseError      Phase = "error"
)

const (
	// GenericError is the only failure text shown to users.
	GenericError = "Something went wrong. Please try again."
	// RequiredMessage is shown when a required field is blank.
	RequiredMessage = "Scenario and constraints are both required."

	LabelIdle = "Analyze"
	LabelBusy = "Analyzing..."
)

var (
	ErrMissingScenario    = errors.New("scenario is required")
	ErrMissingConstraints = errors.New("constraints are required")
)

// View is a snapshot of the form.
type View struct {
	ID          string
	Phase       Phase
	Scenario    string
	Constraints string
	Notice      string
	Error       string
	Result      *analysis.Response
}

// Busy reports whether a submission is outstanding.
func (v View) Busy() bool {
	return v.Phase == PhaseSubmitting
}

// SubmitLabel is the text of the submit control.
func (v View) SubmitLabel() string {
	if v.Busy() {
		return LabelBusy
	}
	return LabelIdle
}

// Sections returns the non-empty list sections of the result.
func (v View) Sections() []analysis.Section {
	if v.Result == nil {
		return nil
	}
	return v.Result.Sections()
}

// Observer is told about every state change of a Form.
type Observer func(View)

// Form runs submissions against an Analyzer and tracks the resulting view.
type Form struct {
	analyzer analysis.Analyzer

	mu        sync.Mutex
	view      View
	observers []Observer
}

// New returns an idle form bound to analyzer.
func New(analyzer analysis.Analyzer) *Form {
	return &Form{
		analyzer: analyzer,
		view:     View{Phase: PhaseIdle},
	}
}

// OnChange registers an observer.
func (f *Form) OnChange(observer Observer) {
	if observer == nil {
		return
	}
	f.mu.Lock()
	f.observers = append(f.observers, observer)
	f.mu.Unlock()
}

// View returns the current snapshot.
func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.view
}

// Validate checks the required-field rule for a submission.
func Validate(scenario, constraints string) error {
	if strings.TrimSpace(scenario) == "" {
		return ErrMissingScenario
	}
	if strings.TrimSpace(constraints) == "" {
		return ErrMissingConstraints
	}
	return nil
}

// Submit issues one analysis request for the given inputs. A blank required
// field returns a validation error and makes no call. Analysis failures never
// surface as errors: they leave the form in PhaseError with GenericError set.
func (f *Form) Submit(ctx context.Context, scenario, constraints string) (View, error) {
	if err := Validate(scenario, constraints); err != nil {
		f.set(View{
			Phase:       PhaseIdle,
			Scenario:    scenario,
			Constraints: constraints,
			Notice:      RequiredMessage,
		})
		return f.View(), err
	}

	view := View{
		ID:          uuid.NewString(),
		Phase:       PhaseSubmitting,
		Scenario:    scenario,
		Constraints: constraints,
	}
	f.set(view)

	req := analysis.Request{
		Scenario:    scenario,
		Constraints: analysis.ParseConstraints(constraints),
	}
	resp, err := f.analyzer.Analyze(ctx, req)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"submission_id": view.ID,
			"constraints":   len(req.Constraints),
		}).Error("scenario analysis failed")
		view.Phase = PhaseError
		view.Error = GenericError
	} else {
		view.Phase = PhaseSuccess
		view.Result = &resp
	}
	f.set(view)
	return view, nil
}

func (f *Form) set(view View) {
	f.mu.Lock()
	f.view = view
	observers := append([]Observer(nil), f.observers...)
	f.mu.Unlock()

	for _, observer := range observers {
		observer(view)
	}
}
