package api

import "github.com/samcharles93/savekit/pkg/gta3"

type DetectResponse struct {
	Object      string   `json:"object"`
	Format      string   `json:"format"`
	Label       string   `json:"label"`
	Method      string   `json:"method"`
	ElementSize int      `json:"element_size,omitempty"`
	Candidates  []string `json:"candidates,omitempty"`
	Digest      string   `json:"digest"`
}

type SaveResponse struct {
	ID        string       `json:"id"`
	Object    string       `json:"object"`
	CreatedAt int64        `json:"created_at"`
	Digest    string       `json:"digest"`
	Size      int          `json:"size"`
	Summary   gta3.Summary `json:"summary"`
}

type DeleteSaveResp struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// UpdateSaveReq edits a stored save. Nil fields are left unchanged.
type UpdateSaveReq struct {
	SaveName         *string `json:"save_name,omitempty"`
	Money            *int32  `json:"money,omitempty"`
	GameClockHours   *uint8  `json:"game_clock_hours,omitempty"`
	GameClockMinutes *uint8  `json:"game_clock_minutes,omitempty"`
	Format           *string `json:"format,omitempty"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Phase   string `json:"phase,omitempty"`
	Code    string `json:"code,omitempty"`
}
