package domain

// RoomKey scopes a chat between one doctor and one patient.
// It is derived, never stored; RoomKeyFor(a, b) == RoomKeyFor(b, a).
type RoomKey string

// RoomKeyFor sorts the two participant ids lexicographically and joins
// them with "_". Ids are opaque and not reused across entity types, so
// the key is unique per unordered pair.
func RoomKeyFor(a, b UserID) RoomKey {
	if b < a {
		a, b = b, a
	}
	return RoomKey(string(a) + "_" + string(b))
}
