package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/venably/venably/internal/adapter/otel"
	"github.com/venably/venably/internal/domain/booking"
	"github.com/venably/venably/internal/domain/contract"
	"github.com/venably/venably/internal/port/database"
	"github.com/venably/venably/internal/port/messagequeue"
)

// ContractService coordinates contract aggregate writes. A contract and its
// member bookings commit or fail as one unit; a single blocking overlap on
// any member rejects the whole set.
type ContractService struct {
	store   database.Store
	tenants *TenantService
	queue   messagequeue.Queue
	metrics *otel.Metrics
	retry   RetryPolicy
}

// NewContractService creates a new ContractService. queue and metrics may be nil.
func NewContractService(store database.Store, tenants *TenantService, queue messagequeue.Queue, metrics *otel.Metrics, retry RetryPolicy) *ContractService {
	return &ContractService{store: store, tenants: tenants, queue: queue, metrics: metrics, retry: retry}
}

// Get returns a contract with its member bookings.
func (s *ContractService) Get(ctx context.Context, tenantID, id string) (*contract.Contract, error) {
	return s.store.GetContract(ctx, tenantID, id)
}

// List returns the tenant's contracts without member details.
func (s *ContractService) List(ctx context.Context, tenantID string) ([]contract.Contract, error) {
	return s.store.ListContracts(ctx, tenantID)
}

type contractWrite struct {
	contract *contract.Contract
	warnings []booking.Conflict
}

// Create creates a contract and all of its member bookings atomically.
func (s *ContractService) Create(ctx context.Context, tenantID string, req *contract.CreateRequest) (*contract.Contract, []booking.Conflict, error) {
	if _, err := s.tenants.Resolve(ctx, tenantID); err != nil {
		return nil, nil, err
	}
	members, err := contract.ValidateCreateRequest(req)
	if err != nil {
		return nil, nil, err
	}

	ctx, span := otel.StartWriteSpan(ctx, "contract_create", tenantID)
	defer span.End()

	start := time.Now()
	res, retries, err := retryWrite(ctx, s.retry, func() (contractWrite, error) {
		c, warnings, err := s.store.CreateContract(ctx, tenantID, req.Name, req.CustomerID, members)
		return contractWrite{contract: c, warnings: warnings}, err
	})
	s.observeWrite(ctx, start, retries, err)
	if err != nil {
		return nil, conflictsOf(err), err
	}

	if s.metrics != nil {
		s.metrics.ContractsWritten.Add(ctx, 1)
		s.metrics.ConflictsAdvisory.Add(ctx, int64(len(res.warnings)))
	}
	s.publishContract(ctx, messagequeue.SubjectContractCreated, res.contract, len(res.warnings))
	return res.contract, res.warnings, nil
}

// Update replaces a contract's member set. Members carrying an ID are kept
// and patched, new members are inserted, and members absent from the set are
// soft-cancelled; the whole diff commits or fails atomically.
func (s *ContractService) Update(ctx context.Context, tenantID, id string, req *contract.UpdateRequest) (*contract.Contract, []booking.Conflict, error) {
	if _, err := s.tenants.Resolve(ctx, tenantID); err != nil {
		return nil, nil, err
	}
	members, err := contract.ParseMembers(req.Members)
	if err != nil {
		return nil, nil, err
	}

	ctx, span := otel.StartWriteSpan(ctx, "contract_update", tenantID)
	defer span.End()

	start := time.Now()
	res, retries, err := retryWrite(ctx, s.retry, func() (contractWrite, error) {
		c, warnings, err := s.store.UpdateContract(ctx, tenantID, id, req.Name, members)
		return contractWrite{contract: c, warnings: warnings}, err
	})
	s.observeWrite(ctx, start, retries, err)
	if err != nil {
		return nil, conflictsOf(err), err
	}

	if s.metrics != nil {
		s.metrics.ContractsWritten.Add(ctx, 1)
		s.metrics.ConflictsAdvisory.Add(ctx, int64(len(res.warnings)))
	}
	s.publishContract(ctx, messagequeue.SubjectContractUpdated, res.contract, len(res.warnings))
	return res.contract, res.warnings, nil
}

// Cancel cancels a contract and soft-cancels every live member booking, so
// the whole event's slots free up together.
func (s *ContractService) Cancel(ctx context.Context, tenantID, id string) (*contract.Contract, error) {
	if _, err := s.tenants.Resolve(ctx, tenantID); err != nil {
		return nil, err
	}

	c, retries, err := retryWrite(ctx, s.retry, func() (*contract.Contract, error) {
		return s.store.CancelContract(ctx, tenantID, id)
	})
	s.observeWrite(ctx, time.Time{}, retries, err)
	if err != nil {
		return nil, err
	}

	s.publishContract(ctx, messagequeue.SubjectContractCancelled, c, 0)
	return c, nil
}

func (s *ContractService) observeWrite(ctx context.Context, start time.Time, retries int, err error) {
	if s.metrics == nil {
		return
	}
	if retries > 0 {
		s.metrics.TxRetries.Add(ctx, int64(retries))
	}
	if !start.IsZero() {
		s.metrics.CommitDuration.Record(ctx, time.Since(start).Seconds())
	}
	if len(conflictsOf(err)) > 0 {
		s.metrics.ConflictsBlocking.Add(ctx, 1)
	}
}

func (s *ContractService) publishContract(ctx context.Context, subject string, c *contract.Contract, warnings int) {
	if s.queue == nil || c == nil {
		return
	}
	payload := messagequeue.ContractEventPayload{
		TenantID:   c.TenantID,
		ContractID: c.ID,
		CustomerID: c.CustomerID,
		Members:    len(c.Members),
		TotalCents: c.TotalCents,
		Warnings:   warnings,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		slog.Warn("event publish failed", "subject", subject, "contract", c.ID, "error", err)
	}
}
