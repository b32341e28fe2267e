package reconcile

import (
	"corral/internal/corpus"
	"corral/internal/partition"
)

// Check runs one full validation pass: snapshot the corpus, load the
// partition set, reconcile. This is the entry point shared by the
// validate command and the retry orchestrator; it only reads, so it is
// safe to invoke alongside an active run.
func Check(corpusRoot string, store *partition.Store) (*Result, error) {
	snap, err := corpus.Build(corpusRoot)
	if err != nil {
		return nil, err
	}
	parts, malformed, err := store.LoadAll()
	if err != nil {
		return nil, err
	}
	return Reconcile(snap, parts, malformed), nil
}
