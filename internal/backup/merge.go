package backup

import "time"

type versioned interface {
	GetID() string
	GetUpdatedAt() time.Time
}

// mergeLWW unions local and remote by id. A remote record replaces the local
// one only when strictly newer. Records missing from remote are kept.
func mergeLWW[T versioned](local, remote []T) []T {
	out := make([]T, len(local), len(local)+len(remote))
	copy(out, local)

	index := make(map[string]int, len(out))
	for i, item := range out {
		index[item.GetID()] = i
	}
	for _, r := range remote {
		if i, ok := index[r.GetID()]; ok {
			if r.GetUpdatedAt().After(out[i].GetUpdatedAt()) {
				out[i] = r
			}
			continue
		}
		index[r.GetID()] = len(out)
		out = append(out, r)
	}
	return out
}
