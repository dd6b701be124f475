package hubclient

import (
	"sync"

	"github.com/google/uuid"

	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/models"
)

// DraftStore is the client-side source of truth for wizard progress.
// Edits land here immediately; the Syncer pushes snapshots to the
// server in the background.
type DraftStore struct {
	mu          sync.Mutex
	step        int
	form        models.FormContext
	extra       models.FormContext
	businessID  *uuid.UUID
	email       string
	displayName string

	// stepHook fires after a step change, outside the lock. The Syncer
	// installs it to push a snapshot at each step boundary.
	stepHook func()
}

// formDataKey is where the form map lives inside the synced context.
const formDataKey = "form_data"

// NewDraftStore creates an empty draft store.
func NewDraftStore() *DraftStore {
	return &DraftStore{form: models.FormContext{}, extra: models.FormContext{}}
}

// SetStepHook installs the callback fired after every step change.
func (d *DraftStore) SetStepHook(hook func()) {
	d.mu.Lock()
	d.stepHook = hook
	d.mu.Unlock()
}

// Step returns the current wizard step.
func (d *DraftStore) Step() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.step
}

// SetStep advances the wizard and fires the step hook.
func (d *DraftStore) SetStep(step int) {
	d.mu.Lock()
	d.step = step
	hook := d.stepHook
	d.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// FormState returns a copy of the form data.
func (d *DraftStore) FormState() models.FormContext {
	d.mu.Lock()
	defer d.mu.Unlock()
	return copyForm(d.form)
}

// UpdateFormData sets one form field.
func (d *DraftStore) UpdateFormData(key string, value interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.form[key] = value
}

// Context returns a copy of the free-form wizard context.
func (d *DraftStore) Context() models.FormContext {
	d.mu.Lock()
	defer d.mu.Unlock()
	return copyForm(d.extra)
}

// UpdateContext merges the partial into the wizard context.
func (d *DraftStore) UpdateContext(partial models.FormContext) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, v := range partial {
		d.extra[k] = v
	}
}

// SetProfile records the owner's contact details as the wizard collects them.
func (d *DraftStore) SetProfile(email, displayName string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.email = email
	d.displayName = displayName
}

// BusinessID returns the draft's business id, nil before one exists.
func (d *DraftStore) BusinessID() *uuid.UUID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.businessID
}

// SetBusinessID records the server-assigned business draft id.
func (d *DraftStore) SetBusinessID(id *uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.businessID = id
}

// Snapshot returns the store contents as one save request. The synced
// context carries the form map under formDataKey next to the free-form
// context keys.
func (d *DraftStore) Snapshot() *SaveSessionRequest {
	d.mu.Lock()
	defer d.mu.Unlock()

	context := copyForm(d.extra)
	context[formDataKey] = copyForm(d.form)

	return &SaveSessionRequest{
		Step:        d.step,
		Context:     context,
		BusinessID:  d.businessID,
		Email:       d.email,
		DisplayName: d.displayName,
	}
}

// Overwrite replaces the store contents with a server snapshot.
// Last snapshot wins; local edits made before a restore are discarded.
func (d *DraftStore) Overwrite(state *models.OnboardingState, profile *models.SessionProfile) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.step = state.Step
	d.businessID = state.BusinessID

	d.form = models.FormContext{}
	d.extra = models.FormContext{}
	for k, v := range state.Context {
		if k == formDataKey {
			// Decoded JSON delivers the nested map as map[string]interface{}.
			switch form := v.(type) {
			case map[string]interface{}:
				d.form = copyForm(form)
			case models.FormContext:
				d.form = copyForm(form)
			}
			continue
		}
		d.extra[k] = v
	}

	if profile != nil {
		d.email = profile.Email
		d.displayName = profile.DisplayName
	}
}

// Clear empties the store, e.g. after onboarding completes.
func (d *DraftStore) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.step = 0
	d.form = models.FormContext{}
	d.extra = models.FormContext{}
	d.businessID = nil
	d.email = ""
	d.displayName = ""
}

func copyForm(form models.FormContext) models.FormContext {
	out := make(models.FormContext, len(form))
	for k, v := range form {
		out[k] = v
	}
	return out
}
