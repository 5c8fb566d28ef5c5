package server

import (
	"channelos/internal/domain"
	"channelos/internal/engine"
)

// Request payloads

type TitleRequest struct {
	Title string `json:"title" maxLength:"500" validate:"max=500"`
}

type MoveRequest struct {
	Delta int `json:"delta" enum:"-1,1" validate:"oneof=-1 1"`
}

type ChecklistRequest struct {
	Label string `json:"label" minLength:"1" validate:"required"`
}

type DeadlineRequest struct {
	Deadline string `json:"deadline" format:"date" validate:"required,datetime=2006-01-02"`
}

// Response payloads

type IdeasResponse struct {
	Items []domain.IdeaBlueprint `json:"items"`
}

type TitleHistoryResponse struct {
	Items []string `json:"items"`
}

type ScheduleResponse struct {
	Items []domain.ScheduleEntry `json:"items"`
}

type WorkflowResponse struct {
	Items []domain.WorkflowItem `json:"items"`
}

type BoardResponse struct {
	Columns []domain.BoardColumn `json:"columns"`
}

type RecipesResponse struct {
	Items []domain.Recipe `json:"items"`
}

type EventsResponse struct {
	Items []domain.Event `json:"items"`
}

type LockResponse = engine.LockResult

type MoveResponse = engine.MoveResult

func ideasResponse(items []domain.IdeaBlueprint) IdeasResponse {
	if items == nil {
		items = []domain.IdeaBlueprint{}
	}
	return IdeasResponse{Items: items}
}

func workflowResponse(items []domain.WorkflowItem) WorkflowResponse {
	if items == nil {
		items = []domain.WorkflowItem{}
	}
	return WorkflowResponse{Items: items}
}

func historyResponse(items []string) TitleHistoryResponse {
	if items == nil {
		items = []string{}
	}
	return TitleHistoryResponse{Items: items}
}
