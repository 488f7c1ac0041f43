package asset

// Asset is a registered piece of content together with its current holder.
type Asset struct {
	ID          uint64 `json:"id"`
	Owner       string `json:"owner"`
	ContentHash string `json:"content-hash"`
	Metadata    string `json:"metadata"`
}

// Clone returns a copy of the asset record.
func (a *Asset) Clone() *Asset {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}
