package core

// CollateralAsset is a registered collateral asset bound to an oracle feed.
// The set of registered assets is fixed at construction.
type CollateralAsset struct {
	AssetID string `json:"asset_id"`
	Feed    string `json:"feed"`
}

// Registry holds the immutable collateral asset set.
type Registry struct {
	assets []*CollateralAsset
	index  map[string]*CollateralAsset
}

// NewRegistry builds the registry from ordered asset / feed lists. The lists
// must pair up one to one.
func NewRegistry(assetIDs, feeds []string) (*Registry, error) {
	if len(assetIDs) == 0 || len(assetIDs) != len(feeds) {
		return nil, ErrBadRegistry
	}

	r := &Registry{
		index: make(map[string]*CollateralAsset, len(assetIDs)),
	}

	for idx, id := range assetIDs {
		if id == "" || feeds[idx] == "" {
			return nil, ErrBadRegistry
		}

		if _, ok := r.index[id]; ok {
			return nil, ErrBadRegistry
		}

		asset := &CollateralAsset{
			AssetID: id,
			Feed:    feeds[idx],
		}
		r.assets = append(r.assets, asset)
		r.index[id] = asset
	}

	return r, nil
}

// Find looks an asset up by id.
func (r *Registry) Find(assetID string) (*CollateralAsset, bool) {
	asset, ok := r.index[assetID]
	return asset, ok
}

// Assets returns the registered assets in construction order.
func (r *Registry) Assets() []*CollateralAsset {
	out := make([]*CollateralAsset, len(r.assets))
	copy(out, r.assets)
	return out
}
