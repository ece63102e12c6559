package chatbotapi

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

const (
	DefaultPollInterval     = 10 * time.Second
	DefaultProvisionTimeout = 5 * time.Minute
)

var (
	ErrProvisionFailed  = errors.New("chatbot creation failed")
	ErrProvisionTimeout = errors.New("chatbot creation is taking longer than expected, check its status later")
	ErrProvisionBusy    = errors.New("another chatbot creation is already being tracked")
)

// WizardAPI is the part of Client the provisioner drives.
type WizardAPI interface {
	StartWizard(ctx context.Context, req WizardStartRequest) (*WizardStartResponse, error)
	Status(ctx context.Context, chatbotID string) (*StatusResponse, error)
	Finalize(ctx context.Context, chatbotID string) (*MessageResponse, error)
}

type ProvisionOption func(*Provisioner)

func WithPollInterval(d time.Duration) ProvisionOption {
	return func(p *Provisioner) { p.interval = d }
}

func WithTimeout(d time.Duration) ProvisionOption {
	return func(p *Provisioner) { p.timeout = d }
}

// WithStatusHook is called with every polled status, before it is acted on.
func WithStatusHook(fn func(StatusResponse)) ProvisionOption {
	return func(p *Provisioner) { p.onStatus = fn }
}

// Provisioner creates a chatbot and tracks it until it is usable. One
// Provisioner tracks at most one chatbot at a time; polls never overlap.
type Provisioner struct {
	api      WizardAPI
	interval time.Duration
	timeout  time.Duration
	onStatus func(StatusResponse)
	busy     atomic.Bool
}

func NewProvisioner(api WizardAPI, opts ...ProvisionOption) *Provisioner {
	p := &Provisioner{
		api:      api,
		interval: DefaultPollInterval,
		timeout:  DefaultProvisionTimeout,
		onStatus: func(StatusResponse) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type ProvisionResult struct {
	Wizard WizardStartResponse
	Status StatusResponse
}

// Create starts the wizard and waits for the chatbot to become usable. On
// failure the returned result still carries whatever was learned.
func (p *Provisioner) Create(ctx context.Context, req WizardStartRequest) (*ProvisionResult, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return nil, ErrProvisionBusy
	}
	defer p.busy.Store(false)

	wizard, err := p.api.StartWizard(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("start wizard: %w", err)
	}
	res := &ProvisionResult{Wizard: *wizard}
	status, err := p.wait(ctx, wizard.ChatbotID)
	if status != nil {
		res.Status = *status
	}
	return res, err
}

// Wait tracks an already started chatbot.
func (p *Provisioner) Wait(ctx context.Context, chatbotID string) (*StatusResponse, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return nil, ErrProvisionBusy
	}
	defer p.busy.Store(false)
	return p.wait(ctx, chatbotID)
}

// wait polls every interval. completed is finalized and returned, ready is
// returned as is, failed ends with ErrProvisionFailed. Hitting the timeout
// stops polling only; the remote job keeps running.
func (p *Provisioner) wait(ctx context.Context, chatbotID string) (*StatusResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var last *StatusResponse
	for {
		select {
		case <-ctx.Done():
			return last, stopReason(ctx)
		case <-ticker.C:
		}

		status, err := p.api.Status(ctx, chatbotID)
		if err != nil {
			if ctx.Err() != nil {
				return last, stopReason(ctx)
			}
			return last, fmt.Errorf("poll status: %w", err)
		}
		last = status
		p.onStatus(*status)

		switch status.Status {
		case StatusCompleted:
			if _, err := p.api.Finalize(ctx, chatbotID); err != nil {
				if ctx.Err() != nil {
					return status, stopReason(ctx)
				}
				return status, fmt.Errorf("finalize: %w", err)
			}
			return status, nil
		case StatusReady:
			return status, nil
		case StatusFailed:
			return status, ErrProvisionFailed
		}
	}
}

// stopReason maps the end of the wait context to the caller-facing error. A
// request cut off by the timeout counts as a timeout, not a poll failure.
func stopReason(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrProvisionTimeout
	}
	return ctx.Err()
}
