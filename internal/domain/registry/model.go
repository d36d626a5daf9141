// Package registry resolves organization identity for manufacturers.
// Mappings live on the ledger under a composite key so every party
// shares one view of which org id a business name belongs to.
package registry

// ManufacturerMapping links a manufacturer business name to its
// organization id. Upsertable: re-registering a name overwrites the
// mapping.
type ManufacturerMapping struct {
	BusinessName string `json:"businessName"`
	OrgID        string `json:"orgId"`
	CreatedAt    string `json:"createdAt"`
}
