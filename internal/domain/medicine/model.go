package medicine

// Status is a supply-chain status. The vocabulary is open-ended: the
// constants below are the statuses the transition policy knows about,
// but custody transfers may carry other values (e.g. site-specific
// waypoints) as long as the handler is authorized.
type Status string

const (
	StatusManufactured   Status = "Manufactured"
	StatusQualityCheck   Status = "Quality Check"
	StatusInDistribution Status = "In Distribution"
	StatusFlagged        Status = "Flagged"
	StatusOrderComplete  Status = "Order Complete"
	StatusClaimed        Status = "Claimed"
	StatusRecalled       Status = "Recalled"
	StatusRemediated     Status = "Remediated"
	StatusRepackaged     Status = "Repackaged"
	StatusScanned        Status = "Scanned"
	StatusInspected      Status = "Inspected"
	StatusApproved       Status = "Approved"
)

// Sentinel handler names carrying role semantics. These are
// caller-supplied strings, not verified identities; the gateway passes
// them through as-is.
const (
	HandlerPublicUser = "PublicUser"
	HandlerRegulator  = "Regulator"
	HandlerInspector  = "Inspector"
)

// Medicine is the aggregate root stored per ledger key.
type Medicine struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Manufacturer      string `json:"manufacturer"`
	BatchNumber       string `json:"batchNumber"`
	ManufacturingDate string `json:"manufacturingDate"`
	ExpirationDate    string `json:"expirationDate"`
	CurrentOwner      string `json:"currentOwner"`
	Status            Status `json:"status"`
	QRCode            string `json:"qrCode"`

	// SupplyChain is append-only; insertion order is the authoritative
	// history and is never reordered or pruned.
	SupplyChain []Event `json:"supplyChain"`

	Flagged              bool     `json:"flagged"`
	FlagNotes            string   `json:"flagNotes,omitempty"`
	AssignedDistributors []string `json:"assignedDistributors,omitempty"`

	// Denormalized copies of the latest flag/unflag event, kept
	// consistent with the matching supplyChain entry.
	FlaggedBy               string       `json:"flaggedBy,omitempty"`
	FlaggedTimestamp        string       `json:"flaggedTimestamp,omitempty"`
	UnflaggedBy             string       `json:"unflaggedBy,omitempty"`
	UnflaggedTimestamp      string       `json:"unflaggedTimestamp,omitempty"`
	UnauthorizedScanDetails *ScanDetails `json:"unauthorizedScanDetails,omitempty"`
}

// Event is one supply-chain history entry. Timestamps derive from the
// ledger transaction time so replicas record identical history.
type Event struct {
	Timestamp string `json:"timestamp"`
	Location  string `json:"location"`
	Handler   string `json:"handler"`
	Status    Status `json:"status"`
	Notes     string `json:"notes,omitempty"`
}

// ScanDetails captures the circumstances of the most recent flag.
type ScanDetails struct {
	FlaggedBy string `json:"flaggedBy"`
	Reason    string `json:"reason"`
	Location  string `json:"location"`
	Timestamp string `json:"timestamp"`
}

// Record is one entry of a full ledger scan. Values that fail to decode
// as Medicine are surfaced raw instead of being dropped.
type Record struct {
	Key      string    `json:"key"`
	Medicine *Medicine `json:"record,omitempty"`
	Raw      string    `json:"raw,omitempty"`
}

// LastEvent returns the tail of the supply chain, or nil when empty.
func (m *Medicine) LastEvent() *Event {
	if len(m.SupplyChain) == 0 {
		return nil
	}
	return &m.SupplyChain[len(m.SupplyChain)-1]
}

// AssignedTo reports whether org was pre-authorized as a distributor.
func (m *Medicine) AssignedTo(org string) bool {
	for _, d := range m.AssignedDistributors {
		if d == org {
			return true
		}
	}
	return false
}
