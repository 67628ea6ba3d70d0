// Package bot implements the dialogue engine's webhook contract: named
// actions that consume the conversation's slot bag and emit slot events
// plus utterances, and per-slot validators that either accept a value or
// return a correction prompt for the bot to re-ask with.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ileco-one/triage-backend/internal/domain"
	"github.com/ileco-one/triage-backend/internal/services"
	"github.com/ileco-one/triage-backend/internal/validate"
)

// ActionRequest is the engine's webhook payload: the sender and the
// current slot bag.
type ActionRequest struct {
	SenderID string            `json:"sender_id"`
	Slots    map[string]string `json:"slots"`
}

// SlotEvent sets a slot in the conversation. A nil Value clears it.
type SlotEvent struct {
	Slot  string `json:"slot"`
	Value any    `json:"value"`
}

// ActionResponse carries the slot events and bot utterances produced by
// one action run.
type ActionResponse struct {
	Events     []SlotEvent `json:"events"`
	Utterances []string    `json:"utterances"`
}

// ValidateResponse is a validator verdict: the accepted (normalized)
// value, or a null value with the correction message to re-prompt with.
type ValidateResponse struct {
	Value   any    `json:"value"`
	Message string `json:"message,omitempty"`
}

// ErrUnknownAction marks an action name outside the supported set.
var ErrUnknownAction = errors.New("unknown action")

// ErrUnknownSlot marks a slot name without a validator.
var ErrUnknownSlot = errors.New("unknown slot")

// StatusReader resolves a follow-up reference to a complaint. The
// aggregator satisfies it.
type StatusReader interface {
	Get(ctx context.Context, f domain.Family, id uint) (*domain.Complaint, error)
}

// RefResolver looks a chatbot reference up in the outage family.
type RefResolver func(ctx context.Context, ref string) (*domain.OutageReport, error)

// Engine executes dialogue actions against the intake service.
type Engine struct {
	Intake     *services.IntakeService
	ResolveRef RefResolver
}

// NewEngine constructs an Engine.
func NewEngine(intake *services.IntakeService, resolve RefResolver) *Engine {
	return &Engine{Intake: intake, ResolveRef: resolve}
}

// Action runs one named action. Unknown names return ErrUnknownAction;
// validation failures come back as utterances, not errors, so the bot can
// relay them to the customer.
func (e *Engine) Action(ctx context.Context, name string, req ActionRequest) (*ActionResponse, error) {
	switch name {
	case "submit_power_outage":
		return e.submitOutage(ctx, req)
	case "submit_meter_concern":
		return e.submitMeterConcern(ctx, req)
	case "request_agent":
		return e.requestAgent(ctx, req)
	case "check_outage_status":
		return e.checkStatus(ctx, req)
	case "resume_conversation":
		return e.resumeConversation(ctx, req)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
}

func (e *Engine) submitOutage(ctx context.Context, req ActionRequest) (*ActionResponse, error) {
	res, err := e.Intake.SubmitOutageReport(ctx, services.OutageSubmission{
		UserID:        req.SenderID,
		FullName:      req.Slots["full_name"],
		ContactNumber: req.Slots["contact_number"],
		Address:       req.Slots["address"],
		Landmark:      req.Slots["landmark"],
		Details:       req.Slots["details"],
	})
	if err != nil {
		return actionFailure(err)
	}

	resp := &ActionResponse{
		Events: []SlotEvent{{Slot: "job_order_ref", Value: res.Reference}},
	}
	if res.Duplicate {
		resp.Utterances = append(resp.Utterances, fmt.Sprintf(
			"An outage at this address was already reported today. Your reference is %s. Our crew is on it.",
			res.Reference))
	} else {
		resp.Utterances = append(resp.Utterances, fmt.Sprintf(
			"Your power outage report has been received. Reference number: %s. Keep it for follow-ups.",
			res.Reference))
	}
	return resp, nil
}

func (e *Engine) submitMeterConcern(ctx context.Context, req ActionRequest) (*ActionResponse, error) {
	id, err := e.Intake.SubmitMeterConcern(ctx, services.MeterSubmission{
		UserID:        req.SenderID,
		AccountNo:     req.Slots["account_no"],
		Name:          req.Slots["full_name"],
		Address:       req.Slots["address"],
		ContactNumber: req.Slots["contact_number"],
		Concern:       req.Slots["concern"],
	})
	if err != nil {
		return actionFailure(err)
	}
	return &ActionResponse{
		Utterances: []string{fmt.Sprintf(
			"Your meter concern has been logged (ticket #%d). A technician will inspect it within 3-5 working days.", id)},
	}, nil
}

func (e *Engine) requestAgent(ctx context.Context, req ActionRequest) (*ActionResponse, error) {
	res, err := e.Intake.SubmitAgentRequest(ctx, services.AgentSubmission{
		UserID:        req.SenderID,
		FullName:      req.Slots["full_name"],
		ContactNumber: req.Slots["contact_number"],
		Concern:       req.Slots["concern"],
	})
	if err != nil {
		return actionFailure(err)
	}
	return &ActionResponse{
		Utterances: []string{fmt.Sprintf(
			"You are number %d in the queue. An agent will reach out to you shortly.", res.QueuePosition)},
	}, nil
}

func (e *Engine) checkStatus(ctx context.Context, req ActionRequest) (*ActionResponse, error) {
	ref, err := validate.JobOrderRef(req.Slots["job_order_ref"])
	if err != nil {
		return &ActionResponse{Utterances: []string{err.Error()}}, nil
	}
	if e.ResolveRef == nil {
		return &ActionResponse{Utterances: []string{"Status lookups are not available right now, please try again later."}}, nil
	}
	r, err := e.ResolveRef(ctx, ref)
	if err != nil {
		return &ActionResponse{Utterances: []string{fmt.Sprintf(
			"I could not find a report with reference %s. Please double-check the number.", ref)}}, nil
	}
	status := r.Status
	if status == "" {
		status = domain.StatusNew
	}
	return &ActionResponse{
		Utterances: []string{fmt.Sprintf("Report %s is currently %s.", ref, status)},
	}, nil
}

func (e *Engine) resumeConversation(ctx context.Context, req ActionRequest) (*ActionResponse, error) {
	id, err := strconv.ParseUint(req.Slots["agent_request_id"], 10, 32)
	if err != nil || id == 0 {
		return &ActionResponse{Utterances: []string{
			"I could not match this conversation to an agent request."}}, nil
	}
	if err := e.Intake.ResumeAgentRequest(ctx, uint(id)); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return &ActionResponse{Utterances: []string{
				"That agent request is no longer in the queue."}}, nil
		}
		return nil, err
	}
	return &ActionResponse{
		Events:     []SlotEvent{{Slot: "agent_request_id", Value: nil}},
		Utterances: []string{"You're back with me! How else can I help you?"},
	}, nil
}

// actionFailure turns a validation error into a re-prompt utterance and
// lets anything else propagate to the HTTP layer.
func actionFailure(err error) (*ActionResponse, error) {
	if errors.Is(err, services.ErrValidation) {
		return &ActionResponse{Utterances: []string{userMessage(err)}}, nil
	}
	return nil, err
}

// userMessage strips the sentinel prefix, leaving the human-readable
// reason produced by the validators.
func userMessage(err error) string {
	msg := err.Error()
	const prefix = "validation failed: "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

// Validate runs the named slot validator. The verdict mirrors the
// dialogue engine's convention: accepted value, or null plus correction.
func (e *Engine) Validate(slot, value string) (*ValidateResponse, error) {
	var (
		v   string
		err error
	)
	switch slot {
	case "full_name":
		v, err = validate.FullName(value)
	case "contact_number":
		v, err = validate.Phone(value)
	case "address":
		v, err = validate.Address(value)
	case "account_no":
		v, err = validate.AccountNo(value)
	case "concern":
		v, err = validate.MeterConcern(value)
	case "job_order_ref":
		v, err = validate.JobOrderRef(value)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	if err != nil {
		return &ValidateResponse{Value: nil, Message: err.Error()}, nil
	}
	return &ValidateResponse{Value: v}, nil
}
