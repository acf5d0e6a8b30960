package handler

import "github.com/99minutos/member-system/internal/core/domain"

type createMemberRequest struct {
	Username    string   `json:"username"    validate:"required"`
	Password    string   `json:"password"    validate:"required"`
	Nickname    string   `json:"nickname"    validate:"required"`
	Authorities []string `json:"authorities" validate:"required,min=1"`
}

type createMemberResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

type memberResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string   `json:"token"`
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Nickname    string   `json:"nickname"`
	Authorities []string `json:"authorities"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toMemberResponses(members []domain.MemberSummary) []memberResponse {
	out := make([]memberResponse, len(members))
	for i, m := range members {
		out[i] = memberResponse{ID: m.ID, Username: m.Username, Nickname: m.Nickname}
	}
	return out
}
