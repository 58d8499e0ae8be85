// Package httputil はHTTP関連のユーティリティを提供する。
package httputil

import "net/http"

// ProblemDetail はRFC 7807準拠のエラーレスポンス構造体。
type ProblemDetail struct {
	Type   string `json:"type"`             // エラータイプのURI
	Title  string `json:"title"`            // エラータイトル
	Status int    `json:"status"`           // HTTPステータスコード
	Detail string `json:"detail,omitempty"` // 詳細説明
	NRC    string `json:"nrc,omitempty"`    // ECU否定応答コード（該当時のみ、16進表記）
}

// ContentType はRFC 7807で定義されたContent-Typeヘッダー値。
const ContentType = "application/problem+json"

// NewProblemDetail は新しいProblemDetailを生成する。
func NewProblemDetail(status int, title, detail string) *ProblemDetail {
	return &ProblemDetail{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
	}
}

// WithNRC はECU否定応答コードを付与したProblemDetailを返す。
func (p *ProblemDetail) WithNRC(nrc string) *ProblemDetail {
	p.NRC = nrc
	return p
}

// BadRequest は400 Bad Requestのエラーレスポンスを生成する。
func BadRequest(detail string) *ProblemDetail {
	return NewProblemDetail(http.StatusBadRequest, "Bad Request", detail)
}

// NotFound は404 Not Foundのエラーレスポンスを生成する。
func NotFound(detail string) *ProblemDetail {
	return NewProblemDetail(http.StatusNotFound, "Not Found", detail)
}

// Conflict は409 Conflictのエラーレスポンスを生成する。
func Conflict(detail string) *ProblemDetail {
	return NewProblemDetail(http.StatusConflict, "Conflict", detail)
}

// InternalServerError は500 Internal Server Errorのエラーレスポンスを生成する。
func InternalServerError(detail string) *ProblemDetail {
	return NewProblemDetail(http.StatusInternalServerError, "Internal Server Error", detail)
}

// BadGateway は502 Bad Gatewayのエラーレスポンスを生成する。
func BadGateway(detail string) *ProblemDetail {
	return NewProblemDetail(http.StatusBadGateway, "Bad Gateway", detail)
}

// ServiceUnavailable は503 Service Unavailableのエラーレスポンスを生成する。
func ServiceUnavailable(detail string) *ProblemDetail {
	return NewProblemDetail(http.StatusServiceUnavailable, "Service Unavailable", detail)
}

// GatewayTimeout は504 Gateway Timeoutのエラーレスポンスを生成する。
func GatewayTimeout(detail string) *ProblemDetail {
	return NewProblemDetail(http.StatusGatewayTimeout, "Gateway Timeout", detail)
}
