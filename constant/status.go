package constant

// RestockStatus is the lifecycle status of a restock order as reported by the
// dealer backend.
type RestockStatus string

const (
	RestockStatusDraft     RestockStatus = "DRAFT"
	RestockStatusPending   RestockStatus = "PENDING"
	RestockStatusApproved  RestockStatus = "APPROVED"
	RestockStatusDelivered RestockStatus = "DELIVERED"
	RestockStatusPaid      RestockStatus = "PAID"
	RestockStatusCanceled  RestockStatus = "CANCELED"
)

// AllRestockStatuses lists every known status, in pipeline order.
var AllRestockStatuses = []RestockStatus{
	RestockStatusDraft,
	RestockStatusPending,
	RestockStatusApproved,
	RestockStatusDelivered,
	RestockStatusPaid,
	RestockStatusCanceled,
}

// forwardNext holds the single legal forward step per status. DRAFT has no
// forward step: it leaves the draft stage only through Accept or Cancel.
var forwardNext = map[RestockStatus]RestockStatus{
	RestockStatusPending:   RestockStatusApproved,
	RestockStatusApproved:  RestockStatusDelivered,
	RestockStatusDelivered: RestockStatusPaid,
}

// Valid reports whether s is one of the known statuses.
func (s RestockStatus) Valid() bool {
	switch s {
	case RestockStatusDraft, RestockStatusPending, RestockStatusApproved,
		RestockStatusDelivered, RestockStatusPaid, RestockStatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted from s.
func (s RestockStatus) Terminal() bool {
	return s == RestockStatusPaid || s == RestockStatusCanceled
}

// Next returns the single legal forward step from s. ok is false when s has
// no forward step (DRAFT, PAID, CANCELED, or an unknown status).
func (s RestockStatus) Next() (RestockStatus, bool) {
	next, ok := forwardNext[s]
	return next, ok
}

// CanCancel reports whether s may transition directly to CANCELED. Cancel is
// an escape valid from every non-terminal status.
func (s RestockStatus) CanCancel() bool {
	return s.Valid() && !s.Terminal()
}

// CanTransition reports whether from -> to is a legal transition: the single
// forward edge, the accept edge (DRAFT -> PENDING), or a cancel from any
// non-terminal status. Everything else is rejected.
func CanTransition(from, to RestockStatus) bool {
	if to == RestockStatusCanceled {
		return from.CanCancel()
	}
	if from == RestockStatusDraft {
		return to == RestockStatusPending
	}
	next, ok := from.Next()
	return ok && next == to
}

// StatusMeta is display metadata shared by every view of a status.
type StatusMeta struct {
	Label string
	Color string
}

var statusMeta = map[RestockStatus]StatusMeta{
	RestockStatusDraft:     {Label: "Draft", Color: "#9E9E9E"},
	RestockStatusPending:   {Label: "Pending", Color: "#FFA726"},
	RestockStatusApproved:  {Label: "Approved", Color: "#42A5F5"},
	RestockStatusDelivered: {Label: "Delivered", Color: "#7E57C2"},
	RestockStatusPaid:      {Label: "Paid", Color: "#66BB6A"},
	RestockStatusCanceled:  {Label: "Canceled", Color: "#EF5350"},
}

// Meta returns the display metadata for s. Unknown statuses fall back to the
// raw status string with a neutral color.
func (s RestockStatus) Meta() StatusMeta {
	if m, ok := statusMeta[s]; ok {
		return m
	}
	return StatusMeta{Label: string(s), Color: "#9E9E9E"}
}

// Role selects which view of the restock workflow a client operates:
// staff sees only submitted orders of its own agency, manager sees every
// order including drafts and additionally accepts or deletes drafts.
type Role string

const (
	RoleStaff   Role = "staff"
	RoleManager Role = "manager"
)

// Action is a user-facing operation on a restock order.
type Action string

const (
	ActionAdvance Action = "advance"
	ActionAccept  Action = "accept"
	ActionCancel  Action = "cancel"
	ActionDelete  Action = "delete"
)

// AvailableActions returns the actions legal for an order in status s when
// operated by role r. Terminal statuses offer nothing; staff never handles
// drafts.
func AvailableActions(s RestockStatus, r Role) []Action {
	if s.Terminal() || !s.Valid() {
		return nil
	}
	if s == RestockStatusDraft {
		if r != RoleManager {
			return nil
		}
		return []Action{ActionAccept, ActionCancel, ActionDelete}
	}
	actions := []Action{}
	if _, ok := s.Next(); ok {
		actions = append(actions, ActionAdvance)
	}
	return append(actions, ActionCancel)
}
