package medicine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/medtrace/medtrace/internal/platform/ledger"
)

// defaultRegistrationTimestamp seeds the first supply-chain event when
// the caller supplies no timestamp, keeping bootstrap history identical
// across replicas.
const defaultRegistrationTimestamp = "2024-01-01T00:00:00Z"

// Service implements the supply-chain state machine and the query
// facade. Each exported method is one ledger transaction: it validates
// before any write, so a failed call never partially mutates state.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterInput carries the registration parameters.
type RegisterInput struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Manufacturer         string `json:"manufacturer"`
	BatchNumber          string `json:"batchNumber"`
	ManufacturingDate    string `json:"manufacturingDate"`
	ExpirationDate       string `json:"expirationDate"`
	RegistrationLocation string `json:"registrationLocation"`
	Timestamp            string `json:"timestamp,omitempty"`
}

// Register creates a medicine in status Manufactured with a single seed
// event. Registering an existing id fails with ErrAlreadyExists no
// matter how the payloads differ.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Medicine, error) {
	if err := requireFields(map[string]string{
		"id": in.ID, "name": in.Name, "manufacturer": in.Manufacturer,
		"batchNumber": in.BatchNumber, "manufacturingDate": in.ManufacturingDate,
		"expirationDate": in.ExpirationDate,
	}, "id", "name", "manufacturer", "batchNumber", "manufacturingDate", "expirationDate"); err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, in.ID)
	}

	mfg, err := parseCalendarDate(in.ManufacturingDate)
	if err != nil {
		return nil, err
	}
	exp, err := parseCalendarDate(in.ExpirationDate)
	if err != nil {
		return nil, err
	}
	if !exp.After(mfg) {
		return nil, fmt.Errorf("%w: expirationDate %s must be after manufacturingDate %s",
			ErrValidation, in.ExpirationDate, in.ManufacturingDate)
	}

	// No future manufacturing, judged against the caller-supplied
	// timestamp when present, the transaction date otherwise. A supplied
	// timestamp must be RFC 3339; it is stored verbatim in the seed
	// event, so a malformed value would pollute history.
	reference := ledger.TxTime(ctx)
	if in.Timestamp != "" {
		t, err := time.Parse(time.RFC3339, in.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: timestamp %q is not in RFC 3339 format", ErrValidation, in.Timestamp)
		}
		reference = t
	}
	if mfg.After(reference.UTC().Truncate(24 * time.Hour)) {
		return nil, fmt.Errorf("%w: manufacturingDate %s is in the future",
			ErrValidation, in.ManufacturingDate)
	}

	name := clip(in.Name, maxNameLen)
	manufacturer := clip(in.Manufacturer, maxManufacturerLen)
	batch := clip(in.BatchNumber, maxBatchNumberLen)
	location := clip(in.RegistrationLocation, maxLocationLen)
	if location == "" {
		location = manufacturer + " Facility"
	}
	timestamp := in.Timestamp
	if timestamp == "" {
		timestamp = defaultRegistrationTimestamp
	}

	m := &Medicine{
		ID:                in.ID,
		Name:              name,
		Manufacturer:      manufacturer,
		BatchNumber:       batch,
		ManufacturingDate: in.ManufacturingDate,
		ExpirationDate:    in.ExpirationDate,
		CurrentOwner:      manufacturer,
		Status:            StatusManufactured,
		QRCode:            "QR-" + batch,
		SupplyChain: []Event{{
			Timestamp: timestamp,
			Location:  location,
			Handler:   manufacturer,
			Status:    StatusManufactured,
			Notes:     "Medicine registered",
		}},
	}
	if err := s.repo.Put(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateSupplyChain applies one supply-chain transition: it authorizes
// the handler against the transition policy, appends the event, and
// moves custody to the handler.
func (s *Service) UpdateSupplyChain(ctx context.Context, id, handler string, newStatus Status, location, notes string) (*Medicine, error) {
	if err := requireFields(map[string]string{
		"id": id, "handler": handler, "status": string(newStatus), "location": location,
	}, "id", "handler", "status", "location"); err != nil {
		return nil, err
	}

	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := ledger.TxTime(ctx)
	if err := authorizeTransition(m, handler, newStatus, now); err != nil {
		return nil, err
	}

	if notes == "" {
		notes = fmt.Sprintf("Status updated to %s", newStatus)
	}
	m.SupplyChain = append(m.SupplyChain, Event{
		Timestamp: now.Format(time.RFC3339),
		Location:  clip(location, maxLocationLen),
		Handler:   handler,
		Status:    newStatus,
		Notes:     notes,
	})
	m.CurrentOwner = handler
	m.Status = newStatus

	if resolvingStatuses[newStatus] {
		m.Flagged = false
		m.FlagNotes = "Resolved: " + notes
	}

	if err := s.repo.Put(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Flag marks a medicine as suspect. Flagging is deliberately open to
// any caller: it is the fast-path safety mechanism, so neither current
// status nor caller role gates it.
func (s *Service) Flag(ctx context.Context, id, flaggedBy, reason, location string) (*Medicine, error) {
	if err := requireFields(map[string]string{
		"id": id, "flaggedBy": flaggedBy, "reason": reason, "location": location,
	}, "id", "flaggedBy", "reason", "location"); err != nil {
		return nil, err
	}

	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ts := ledger.TxTime(ctx).Format(time.RFC3339)
	m.SupplyChain = append(m.SupplyChain, Event{
		Timestamp: ts,
		Location:  clip(location, maxLocationLen),
		Handler:   flaggedBy,
		Status:    StatusFlagged,
		Notes:     reason,
	})
	m.Flagged = true
	m.FlagNotes = reason
	m.Status = StatusFlagged
	m.FlaggedBy = flaggedBy
	m.FlaggedTimestamp = ts
	m.UnauthorizedScanDetails = &ScanDetails{
		FlaggedBy: flaggedBy,
		Reason:    reason,
		Location:  clip(location, maxLocationLen),
		Timestamp: ts,
	}

	if err := s.repo.Put(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Unflag clears a flag. Only the manufacturer may do so; the asymmetry
// with Flag is intentional fail-safe bias.
func (s *Service) Unflag(ctx context.Context, id, unflaggedBy, resolutionNotes, location string) (*Medicine, error) {
	if err := requireFields(map[string]string{
		"id": id, "unflaggedBy": unflaggedBy, "resolutionNotes": resolutionNotes, "location": location,
	}, "id", "unflaggedBy", "resolutionNotes", "location"); err != nil {
		return nil, err
	}

	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.Flagged {
		return nil, fmt.Errorf("%w: medicine %s is not flagged", ErrInvalidTransition, id)
	}
	if unflaggedBy != m.Manufacturer {
		return nil, fmt.Errorf("%w: only the manufacturer %q may clear a flag, got %q",
			ErrUnauthorized, m.Manufacturer, unflaggedBy)
	}

	ts := ledger.TxTime(ctx).Format(time.RFC3339)
	m.SupplyChain = append(m.SupplyChain, Event{
		Timestamp: ts,
		Location:  clip(location, maxLocationLen),
		Handler:   unflaggedBy,
		Status:    StatusRemediated,
		Notes:     resolutionNotes,
	})
	m.Flagged = false
	m.FlagNotes = "Resolved: " + resolutionNotes
	m.Status = StatusRemediated
	m.UnflaggedBy = unflaggedBy
	m.UnflaggedTimestamp = ts

	if err := s.repo.Put(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordScan appends an audit-trail Scanned event. It never alters
// status or custody.
func (s *Service) RecordScan(ctx context.Context, id, organization, role, username, location string) (*Medicine, error) {
	if err := requireFields(map[string]string{
		"id": id, "organization": organization, "role": role, "location": location,
	}, "id", "organization", "role", "location"); err != nil {
		return nil, err
	}

	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	m.SupplyChain = append(m.SupplyChain, Event{
		Timestamp: ledger.TxTime(ctx).Format(time.RFC3339),
		Location:  clip(location, maxLocationLen),
		Handler:   organization,
		Status:    StatusScanned,
		Notes:     fmt.Sprintf("Scanned by %s (%s) of %s", username, role, organization),
	})

	if err := s.repo.Put(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// AssignDistributors replaces the assigned-distributor set wholesale.
// No event is appended and custody does not move.
func (s *Service) AssignDistributors(ctx context.Context, id, distributorsJSON string) (*Medicine, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var distributors []string
	if err := json.Unmarshal([]byte(distributorsJSON), &distributors); err != nil {
		return nil, fmt.Errorf("%w: distributors payload is not a JSON string array: %v", ErrValidation, err)
	}
	m.AssignedDistributors = distributors

	if err := s.repo.Put(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Get returns a medicine by id.
func (s *Service) Get(ctx context.Context, id string) (*Medicine, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// All returns every ledger record, decoding leniently.
func (s *Service) All(ctx context.Context) ([]*Record, error) {
	return s.repo.All(ctx)
}

// FlaggedMedicines returns the currently flagged subset.
func (s *Service) FlaggedMedicines(ctx context.Context) ([]*Medicine, error) {
	return s.repo.Flagged(ctx)
}

// ByManufacturer returns the medicines created by a manufacturer.
func (s *Service) ByManufacturer(ctx context.Context, manufacturer string) ([]*Medicine, error) {
	if manufacturer == "" {
		return nil, fmt.Errorf("%w: manufacturer is required", ErrValidation)
	}
	return s.repo.ByManufacturer(ctx, manufacturer)
}

// ByOwner returns medicines the organization holds custody of, plus
// those it is pre-authorized for as an assigned distributor. The dual
// match lets distributors see medicines before custody transfers.
func (s *Service) ByOwner(ctx context.Context, owner string) ([]*Medicine, error) {
	if owner == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrValidation)
	}
	records, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []*Medicine
	for _, rec := range records {
		if rec.Medicine == nil {
			continue
		}
		if rec.Medicine.CurrentOwner == owner || rec.Medicine.AssignedTo(owner) {
			out = append(out, rec.Medicine)
		}
	}
	return out, nil
}

// Delete removes the ledger key entirely. Administrative, out-of-band
// with the normal lifecycle; no tombstone is left.
func (s *Service) Delete(ctx context.Context, id string) error {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.repo.Delete(ctx, id)
}

// InitLedger bootstraps the ledger with a fixed seed dataset. Existing
// keys are overwritten.
func (s *Service) InitLedger(ctx context.Context) error {
	for _, m := range seedMedicines() {
		m := m
		if err := s.repo.Put(ctx, &m); err != nil {
			return fmt.Errorf("seed %s: %w", m.ID, err)
		}
	}
	return nil
}

func seedMedicines() []Medicine {
	const ts = defaultRegistrationTimestamp
	seed := func(id, name, manufacturer, batch, mfgDate, expDate string) Medicine {
		return Medicine{
			ID:                id,
			Name:              name,
			Manufacturer:      manufacturer,
			BatchNumber:       batch,
			ManufacturingDate: mfgDate,
			ExpirationDate:    expDate,
			CurrentOwner:      manufacturer,
			Status:            StatusManufactured,
			QRCode:            "QR-" + batch,
			SupplyChain: []Event{{
				Timestamp: ts,
				Location:  manufacturer + " Facility",
				Handler:   manufacturer,
				Status:    StatusManufactured,
				Notes:     "Medicine registered",
			}},
		}
	}
	return []Medicine{
		seed("MED001", "Paracetamol 500mg", "PharmaCo Ltd", "BATCH-2025-001", "2025-01-15", "2028-01-15"),
		seed("MED002", "Amoxicillin 250mg", "PharmaCo Ltd", "BATCH-2025-002", "2025-02-01", "2027-02-01"),
		seed("MED003", "Ibuprofen 400mg", "HealthGen Labs", "BATCH-2025-003", "2025-03-10", "2028-03-10"),
	}
}
