package http

import (
	"fmt"
	"time"

	"minder/internal/core"
	"minder/internal/services"
	"minder/internal/views"
)

const dateLayout = "2006-01-02"

// Wire representations. Money crosses the wire as a decimal number and is
// converted to cents at the boundary.

type parentResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type childResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	DateOfBirth string          `json:"dateOfBirth"`
	ParentID    string          `json:"parentId"`
	Parent      *parentResponse `json:"parent,omitempty"`
}

type additionalCostDTO struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type sessionResponse struct {
	ID              string              `json:"id"`
	ChildID         string              `json:"childId"`
	Date            string              `json:"date"`
	StartTime       string              `json:"startTime"`
	EndTime         string              `json:"endTime"`
	Type            string              `json:"type"`
	PickupCost      float64             `json:"pickupCost"`
	AdditionalCosts []additionalCostDTO `json:"additionalCosts"`
	TotalCost       float64             `json:"totalCost"`
	Child           *childResponse      `json:"child,omitempty"`
}

func toParentResponse(p core.Parent) parentResponse {
	return parentResponse{
		ID:      p.ID,
		Name:    p.Name,
		Email:   p.Email,
		Phone:   p.Phone,
		Address: p.Address,
	}
}

func toChildResponse(c views.Child) childResponse {
	resp := childResponse{
		ID:          c.ID,
		Name:        c.Name,
		DateOfBirth: c.DateOfBirth.Format(dateLayout),
		ParentID:    c.ParentID,
	}
	if c.Parent != nil {
		p := toParentResponse(*c.Parent)
		resp.Parent = &p
	}
	return resp
}

func toSessionResponse(s views.Session) sessionResponse {
	costs := make([]additionalCostDTO, 0, len(s.AdditionalCosts))
	for _, ac := range s.AdditionalCosts {
		costs = append(costs, additionalCostDTO{
			Description: ac.Description,
			Amount:      ac.Amount.Float64(),
		})
	}
	resp := sessionResponse{
		ID:              s.ID,
		ChildID:         s.ChildID,
		Date:            s.Date.Format(dateLayout),
		StartTime:       s.StartTime.Format(time.RFC3339),
		EndTime:         s.EndTime.Format(time.RFC3339),
		Type:            string(s.Type),
		PickupCost:      s.PickupCost.Float64(),
		AdditionalCosts: costs,
		TotalCost:       s.Total.Float64(),
	}
	if s.Child != nil {
		c := toChildResponse(*s.Child)
		resp.Child = &c
	}
	return resp
}

// Request bodies use pointer fields: a create derefs them (missing fields
// become zero values the validators reject), an update treats nil as
// "keep the stored value".

type parentRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

func (req parentRequest) toParent() core.Parent {
	return core.Parent{
		Name:    deref(req.Name),
		Email:   deref(req.Email),
		Phone:   deref(req.Phone),
		Address: deref(req.Address),
	}
}

func (req parentRequest) toPatch() services.ParentPatch {
	return services.ParentPatch{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
}

type childRequest struct {
	Name        *string `json:"name"`
	DateOfBirth *string `json:"dateOfBirth"`
	ParentID    *string `json:"parentId"`
}

func (req childRequest) toChild() (core.Child, error) {
	c := core.Child{
		Name:     deref(req.Name),
		ParentID: deref(req.ParentID),
	}
	if req.DateOfBirth != nil {
		d, err := parseDate(*req.DateOfBirth)
		if err != nil {
			return core.Child{}, err
		}
		c.DateOfBirth = d
	}
	return c, nil
}

func (req childRequest) toPatch() (services.ChildPatch, error) {
	patch := services.ChildPatch{
		Name:     req.Name,
		ParentID: req.ParentID,
	}
	if req.DateOfBirth != nil {
		d, err := parseDate(*req.DateOfBirth)
		if err != nil {
			return services.ChildPatch{}, err
		}
		patch.DateOfBirth = &d
	}
	return patch, nil
}

type sessionRequest struct {
	ChildID         *string              `json:"childId"`
	Date            *string              `json:"date"`
	StartTime       *string              `json:"startTime"`
	EndTime         *string              `json:"endTime"`
	Type            *string              `json:"type"`
	PickupCost      *float64             `json:"pickupCost"`
	AdditionalCosts *[]additionalCostDTO `json:"additionalCosts"`
}

func (req sessionRequest) toSession() (core.Session, error) {
	patch, err := req.toPatch()
	if err != nil {
		return core.Session{}, err
	}

	var s core.Session
	s.ChildID = deref(req.ChildID)
	if patch.Date != nil {
		s.Date = *patch.Date
	}
	if patch.StartTime != nil {
		s.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		s.EndTime = *patch.EndTime
	}
	if patch.Type != nil {
		s.Type = *patch.Type
	}
	if patch.PickupCost != nil {
		s.PickupCost = *patch.PickupCost
	}
	if patch.AdditionalCosts != nil {
		s.AdditionalCosts = *patch.AdditionalCosts
	} else {
		s.AdditionalCosts = []core.AdditionalCost{}
	}
	return s, nil
}

func (req sessionRequest) toPatch() (services.SessionPatch, error) {
	patch := services.SessionPatch{ChildID: req.ChildID}

	if req.Date != nil {
		d, err := parseDate(*req.Date)
		if err != nil {
			return services.SessionPatch{}, err
		}
		patch.Date = &d
	}
	if req.StartTime != nil {
		t, err := parseTime(*req.StartTime)
		if err != nil {
			return services.SessionPatch{}, err
		}
		patch.StartTime = &t
	}
	if req.EndTime != nil {
		t, err := parseTime(*req.EndTime)
		if err != nil {
			return services.SessionPatch{}, err
		}
		patch.EndTime = &t
	}
	if req.Type != nil {
		st := core.SessionType(*req.Type)
		patch.Type = &st
	}
	if req.PickupCost != nil {
		m, err := core.MoneyFromFloat(*req.PickupCost)
		if err != nil {
			return services.SessionPatch{}, fmt.Errorf("pickupCost: %w", err)
		}
		patch.PickupCost = &m
	}
	if req.AdditionalCosts != nil {
		costs := make([]core.AdditionalCost, 0, len(*req.AdditionalCosts))
		for i, dto := range *req.AdditionalCosts {
			m, err := core.MoneyFromFloat(dto.Amount)
			if err != nil {
				return services.SessionPatch{}, fmt.Errorf("additionalCosts[%d]: %w", i, err)
			}
			costs = append(costs, core.AdditionalCost{Description: dto.Description, Amount: m})
		}
		patch.AdditionalCosts = &costs
	}
	return patch, nil
}

func parseDate(value string) (core.Date, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return core.Date{}, fmt.Errorf("date %q: %w", value, core.ErrInvalidDate)
	}
	return core.Date{Time: t}, nil
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q: %w", value, core.ErrInvalidDate)
	}
	return t, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
