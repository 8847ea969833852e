// Package frame applies the defect classifier to every atom of one simulation
// frame. It defines the Service (validation, chunked classification, summary
// bookkeeping, async notification), the Store interface for frame summaries,
// and the host-facing property model.
package frame
