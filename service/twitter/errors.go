package twitter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/x-xyz/salebot/domain"
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type errorResp struct {
	// v1.1
	Errors []apiError `json:"errors"`
	// v2 problem details
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

const codeRateLimitExceeded = 88

var rateLimitCodes = map[int]struct{}{
	codeRateLimitExceeded: {},
	185:                   {}, // over daily status update limit
}

var authCodes = map[int]struct{}{
	32:  {}, // could not authenticate you
	64:  {}, // account suspended
	89:  {}, // invalid or expired token
	135: {}, // timestamp out of bounds
	215: {}, // bad authentication data
	261: {}, // application cannot perform write actions
	326: {}, // account temporarily locked
}

func classify(statusCode int, header http.Header, body []byte) error {
	resp := errorResp{}
	_ = json.Unmarshal(body, &resp)

	messages := make([]string, 0, len(resp.Errors)+1)
	kind := domain.PublishErrorKind("")
	for _, e := range resp.Errors {
		messages = append(messages, e.Message)
		if _, ok := rateLimitCodes[e.Code]; ok {
			kind = domain.PublishErrorRateLimit
		} else if _, ok := authCodes[e.Code]; ok && kind == "" {
			kind = domain.PublishErrorAuth
		}
	}
	if resp.Detail != "" {
		messages = append(messages, resp.Detail)
	} else if resp.Title != "" {
		messages = append(messages, resp.Title)
	}

	if kind == "" {
		switch statusCode {
		case http.StatusTooManyRequests:
			kind = domain.PublishErrorRateLimit
		case http.StatusUnauthorized, http.StatusForbidden:
			kind = domain.PublishErrorAuth
		default:
			kind = domain.PublishErrorTransient
		}
	}

	err := statusError(statusCode, strings.Join(messages, "; "))
	switch kind {
	case domain.PublishErrorRateLimit:
		return domain.NewRateLimitError(parseResetHeader(header), err)
	case domain.PublishErrorAuth:
		return domain.NewAuthError(err)
	default:
		return domain.NewTransientError(err)
	}
}
