package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/AchilleasB/membership-console/internal/adapters/apiclient"
	"github.com/AchilleasB/membership-console/internal/core/domain"
	"github.com/AchilleasB/membership-console/internal/core/ports"
	"github.com/AchilleasB/membership-console/internal/core/services"
	"github.com/AchilleasB/membership-console/internal/core/viewstate"
	"github.com/AchilleasB/membership-console/internal/core/views"
)

const maxActionBody = 64 << 10

type ConsoleHandler struct {
	console ports.ConsoleService
	logger  *slog.Logger
}

func NewConsoleHandler(console ports.ConsoleService, logger *slog.Logger) *ConsoleHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleHandler{console: console, logger: logger.With("component", "console-handler")}
}

// ActionRequest is the flat wire form of every console action. Type selects
// the action and only the fields it reads are looked at.
type ActionRequest struct {
	Type string `json:"type"`

	Query           string `json:"query"`
	IncludeInactive bool   `json:"include_inactive"`

	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Phone    string `json:"phone"`
	Birthday string `json:"birthday"`
	Gender   *bool  `json:"gender"`
	People   int    `json:"people"`

	Record        domain.NewRecord     `json:"record"`
	Form          viewstate.RecordForm `json:"form"`
	VisitDatetime string               `json:"visit_datetime"`
}

// ActionResponse carries the resulting view. Error is set when the action
// failed; the view is still current.
type ActionResponse struct {
	View  views.Console `json:"view"`
	Error string        `json:"error,omitempty"`
}

// Console returns the view of the active screen.
func (h *ConsoleHandler) Console(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, h.console.Current()); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// Dispatch decodes one action, applies it and answers with the new view.
func (h *ConsoleHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxActionBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	action, err := req.Action()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.console.Dispatch(r.Context(), action)
	resp := ActionResponse{View: view}
	status := http.StatusOK
	if err != nil {
		resp.Error = err.Error()
		status = statusFor(err)
	}
	if err := writeJSON(w, status, resp); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (req ActionRequest) member() domain.MemberKey {
	return domain.MemberKey{FamilyID: req.MemberID, Name: req.Name, LastName: req.LastName}
}

// Action maps the request onto its viewstate action.
func (req ActionRequest) Action() (viewstate.Action, error) {
	switch req.Type {
	case "refresh_data":
		return viewstate.RefreshData{}, nil
	case "update_expired_memberships":
		return viewstate.UpdateExpiredMemberships{}, nil
	case "send_renewal_emails":
		return viewstate.SendRenewalEmails{}, nil
	case "show_todays_visitors":
		return viewstate.ShowTodaysVisitors{}, nil
	case "dismiss_todays_visitors":
		return viewstate.DismissTodaysVisitors{}, nil
	case "set_search":
		return viewstate.SetSearch{Query: req.Query, IncludeInactive: req.IncludeInactive}, nil

	case "open_add_record":
		return viewstate.OpenAddRecord{}, nil
	case "cancel_add_record":
		return viewstate.CancelAddRecord{}, nil
	case "preview_member_id":
		return viewstate.PreviewMemberID{Name: req.Name, LastName: req.LastName}, nil
	case "submit_add_record":
		return viewstate.SubmitAddRecord{Record: req.Record}, nil

	case "open_family":
		return viewstate.OpenFamily{FamilyID: req.MemberID}, nil
	case "close_family":
		return viewstate.CloseFamily{}, nil
	case "renew_membership":
		return viewstate.RenewMembership{}, nil
	case "check_in_family":
		return viewstate.CheckInFamily{FamilyID: req.MemberID, People: req.People}, nil

	case "open_record":
		return viewstate.OpenRecord{Member: req.member()}, nil
	case "save_record":
		return viewstate.SaveRecord{Form: req.Form}, nil
	case "delete_record":
		return viewstate.DeleteRecord{}, nil
	case "close_record":
		return viewstate.CloseRecord{}, nil

	case "open_manage_secondary":
		return viewstate.OpenManageSecondary{}, nil
	case "add_secondary_member":
		return viewstate.AddSecondaryMember{
			Name:     req.Name,
			LastName: req.LastName,
			Phone:    req.Phone,
			Birthday: req.Birthday,
			Gender:   req.Gender,
		}, nil
	case "delete_secondary_member":
		return viewstate.DeleteSecondaryMember{Name: req.Name, LastName: req.LastName}, nil
	case "close_manage_secondary":
		return viewstate.CloseManageSecondary{}, nil

	case "open_add_visit":
		return viewstate.OpenAddVisit{Member: req.member()}, nil
	case "submit_visit":
		return viewstate.SubmitVisit{VisitDatetime: req.VisitDatetime}, nil
	case "cancel_add_visit":
		return viewstate.CancelAddVisit{}, nil

	case "open_member_visits":
		return viewstate.OpenMemberVisits{Member: req.member()}, nil
	case "prev_month":
		return viewstate.PrevMonth{}, nil
	case "next_month":
		return viewstate.NextMonth{}, nil
	case "close_member_visits":
		return viewstate.CloseMemberVisits{}, nil
	}
	return nil, fmt.Errorf("%w: %q", services.ErrUnknownAction, req.Type)
}

func statusFor(err error) int {
	var apiErr *apiclient.APIError
	var transportErr *apiclient.TransportError
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrBusy),
		errors.Is(err, viewstate.ErrInvalidTransition),
		errors.Is(err, viewstate.ErrMissingFocus):
		return http.StatusConflict
	case errors.Is(err, services.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.As(err, &apiErr), errors.As(err, &transportErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
