package ingest

import "finflow/internal/core"

// Deduplicate filters candidates against the existing record set using the
// (date, amount, comment) identity key. One left-to-right pass: accepted
// candidates add their key to the running set, so later duplicates within
// the same batch are suppressed too. Input order is preserved.
//
// Two genuinely distinct transactions that share the triplet collapse to
// one survivor. That is accepted behavior, not a defect.
func Deduplicate(candidates, existing []core.Transaction) (accepted []core.Transaction, duplicates int) {
	seen := make(map[string]struct{}, len(existing)+len(candidates))
	for _, tx := range existing {
		seen[tx.DedupKey()] = struct{}{}
	}
	for _, tx := range candidates {
		key := tx.DedupKey()
		if _, dup := seen[key]; dup {
			duplicates++
			continue
		}
		seen[key] = struct{}{}
		accepted = append(accepted, tx)
	}
	return accepted, duplicates
}
