package pipeline

import (
	"seedgen/gen"
)

// validateRun runs the post-load referential-integrity pass: every id must
// be unique within its table and every event/order must reference a user
// generated in the same run. Any violation is fatal to the run.
func validateRun(users []*gen.User, events []*gen.Event, orders []*gen.Order) error {
	userIDs := make(map[int64]bool, len(users))
	for _, u := range users {
		if userIDs[u.ID] {
			return gen.IntegrityViolationf("duplicate user id %d", u.ID)
		}
		userIDs[u.ID] = true
	}

	eventIDs := make(map[int64]bool, len(events))
	for _, e := range events {
		if eventIDs[e.ID] {
			return gen.IntegrityViolationf("duplicate event id %d", e.ID)
		}
		eventIDs[e.ID] = true
		if !userIDs[e.UserID] {
			return gen.IntegrityViolationf("event %d references unknown user %d", e.ID, e.UserID)
		}
	}

	orderIDs := make(map[int64]bool, len(orders))
	for _, o := range orders {
		if orderIDs[o.ID] {
			return gen.IntegrityViolationf("duplicate order id %d", o.ID)
		}
		orderIDs[o.ID] = true
		if !userIDs[o.UserID] {
			return gen.IntegrityViolationf("order %d references unknown user %d", o.ID, o.UserID)
		}
	}
	return nil
}
