package asset

// Call is the closed set of operations served by the registry.
type Call interface {
	Method() string
	isAssetCall()
}

// Method names exposed on the uniform call surface.
const (
	MethodCreateAsset  = "create-asset"
	MethodTransfer     = "transfer"
	MethodGetAssetData = "get-asset-data"
)

// CreateAsset mints a new asset owned by the caller.
type CreateAsset struct {
	ContentHash string
	Metadata    string
}

// Transfer moves an asset from the caller to Recipient.
type Transfer struct {
	AssetID   uint64
	Recipient string
}

// GetAssetData reads an asset record.
type GetAssetData struct {
	AssetID uint64
}

func (CreateAsset) Method() string  { return MethodCreateAsset }
func (Transfer) Method() string     { return MethodTransfer }
func (GetAssetData) Method() string { return MethodGetAssetData }

func (CreateAsset) isAssetCall()  {}
func (Transfer) isAssetCall()     {}
func (GetAssetData) isAssetCall() {}
