package models

import "time"

// CanBeGranted holds while the request is REQUESTED and not past its expiry.
func CanBeGranted(r *ConsentRequest, now time.Time) bool {
	return r != nil && r.Status == StatusRequested && !now.After(r.ExpiryDate)
}

// CanBeRevoked holds while the request is GRANTED and not past its expiry.
func CanBeRevoked(r *ConsentRequest, now time.Time) bool {
	return r != nil && r.Status == StatusGranted && !now.After(r.ExpiryDate)
}

// InDateRange reports whether now lies in [DateRangeFrom, DateRangeTo], inclusive.
func InDateRange(a *ConsentArtefact, now time.Time) bool {
	return a != nil && !now.Before(a.DateRangeFrom) && !now.After(a.DateRangeTo)
}

// IsValid reports whether the artefact authorises access at now: inside
// its date range with the parent request still GRANTED.
func IsValid(a *ConsentArtefact, parent *ConsentRequest, now time.Time) bool {
	return InDateRange(a, now) && parent != nil && parent.Status == StatusGranted && parent.ID == a.ConsentRequestID
}

// AllowsAll reports whether every requested category is covered. An empty
// request is never allowed.
func AllowsAll(a *ConsentArtefact, requested []string) bool {
	if a == nil || len(requested) == 0 {
		return false
	}
	covered := make(map[string]struct{}, len(a.DataCategories))
	for _, dc := range a.DataCategories {
		covered[dc.Category] = struct{}{}
	}
	for _, c := range requested {
		if _, ok := covered[c]; !ok {
			return false
		}
	}
	return true
}

// RemainingAccess returns repeats minus used, floored at zero, or nil when
// the artefact carries no quota.
func RemainingAccess(a *ConsentArtefact, used int) *int {
	if a == nil || a.Frequency == nil {
		return nil
	}
	remaining := max(a.Frequency.Repeats-used, 0)
	return &remaining
}

// HasQuota reports whether one more access fits the quota.
func HasQuota(a *ConsentArtefact, used int) bool {
	r := RemainingAccess(a, used)
	return r == nil || *r > 0
}

// IsDueForExpiry reports whether the expiry sweep should close r: it is
// still open and either its own expiry date or (when granted) its
// artefact's date range has lapsed. art may be nil.
func IsDueForExpiry(r *ConsentRequest, art *ConsentArtefact, now time.Time) bool {
	if r == nil || !r.Status.CanTransitionTo(StatusExpired) {
		return false
	}
	if now.After(r.ExpiryDate) {
		return true
	}
	return r.Status == StatusGranted && art != nil && now.After(art.DateRangeTo)
}
