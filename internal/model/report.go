package model

// Rejection is a record refused at ingestion with the reason why.
type Rejection struct {
	Record PriceRecord
	Reason error
}

// MergeReport summarises one merge of a batch into the store.
type MergeReport struct {
	Inserted         int
	SkippedDuplicate int
	Rejected         int
	Rejections       []Rejection
}

// Total returns the number of input records the report accounts for.
func (r *MergeReport) Total() int {
	return r.Inserted + r.SkippedDuplicate + r.Rejected
}

// Add folds o into r.
func (r *MergeReport) Add(o *MergeReport) {
	if o == nil {
		return
	}
	r.Inserted += o.Inserted
	r.SkippedDuplicate += o.SkippedDuplicate
	r.Rejected += o.Rejected
	r.Rejections = append(r.Rejections, o.Rejections...)
}
