// Package eventform holds the event editing core: the draft of an event, its
// field validation, the map location picker, loading an existing event for
// editing, and submitting the draft to the record store.
//
// A typical edit session:
//
//	loader := eventform.NewEventLoader(eventform.LoaderConfig{...})
//	store, mode, err := loader.LoadDraft(ctx, eventID)
//	ctrl := eventform.NewSubmissionController(eventform.ControllerConfig{Draft: store, Mode: mode, ...})
//	store.SetTitle("Concert")
//	_, err = ctrl.Submit(ctx)
//
// Validation never fails with an error. It produces ValidationErrors, a map
// of field to message that is empty for every field when the draft can be
// submitted.
package eventform
