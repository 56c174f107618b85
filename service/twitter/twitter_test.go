package twitter

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/x-xyz/salebot/base/announcement"
	bCtx "github.com/x-xyz/salebot/base/ctx"
	"github.com/x-xyz/salebot/domain"
)

const text = "Cool Cat #1 sold to 0x123456 for 1.5Ξ or $3000.00. A rare item. https://opensea.io/assets/0xabc/1"

type reply struct {
	status int
	header map[string]string
	body   string
}

type twitterSuite struct {
	suite.Suite

	server      *httptest.Server
	reply       reply
	path        string
	contentType string
	rawBody     []byte
}

func TestTwitterSuite(t *testing.T) {
	suite.Run(t, new(twitterSuite))
}

func (s *twitterSuite) SetupTest() {
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.path = r.URL.Path
		s.contentType = r.Header.Get("Content-Type")
		s.rawBody, _ = ioutil.ReadAll(r.Body)
		for k, v := range s.reply.header {
			w.Header().Set(k, v)
		}
		w.WriteHeader(s.reply.status)
		_, _ = w.Write([]byte(s.reply.body))
	}))
}

func (s *twitterSuite) TearDownTest() {
	s.server.Close()
}

func (s *twitterSuite) cfg() *ClientCfg {
	return &ClientCfg{
		HttpClient: s.server.Client(),
		Timeout:    5 * time.Second,
		BaseUrl:    s.server.URL,
	}
}

func (s *twitterSuite) postedStatus() string {
	form, err := url.ParseQuery(string(s.rawBody))
	s.Require().NoError(err)
	return form.Get("status")
}

func (s *twitterSuite) TestStatusesPercentEncodesByDefault() {
	s.reply = reply{status: http.StatusOK, body: `{"id_str":"100","text":"echo"}`}
	ack, err := NewStatusesPublisher(s.cfg()).Publish(bCtx.Background(), text)
	s.Require().NoError(err)
	s.Equal(&domain.Ack{Id: "100", Text: "echo"}, ack)
	s.Equal("/1.1/statuses/update.json", s.path)
	s.Equal("application/x-www-form-urlencoded", s.contentType)
	s.Equal(announcement.EncodeURIComponent(text), s.postedStatus())
}

func (s *twitterSuite) TestStatusesRawOverride() {
	s.reply = reply{status: http.StatusOK, body: `{"id_str":"100","text":"echo"}`}
	cfg := s.cfg()
	cfg.Encoding = announcement.EncodingRaw
	_, err := NewStatusesPublisher(cfg).Publish(bCtx.Background(), text)
	s.Require().NoError(err)
	s.Equal(text, s.postedStatus())
}

func (s *twitterSuite) TestStatusesRateLimit() {
	s.reply = reply{
		status: http.StatusTooManyRequests,
		header: map[string]string{"x-rate-limit-reset": "1704103200"},
		body:   `{"errors":[{"code":88,"message":"Rate limit exceeded"}]}`,
	}
	_, err := NewStatusesPublisher(s.cfg()).Publish(bCtx.Background(), text)
	pErr := domain.ClassifyPublishError(err)
	s.Equal(domain.PublishErrorRateLimit, pErr.Kind)
	s.Equal(time.Unix(1704103200, 0), pErr.ResetAt)
	s.Contains(err.Error(), "Rate limit exceeded")
}

func (s *twitterSuite) TestStatusesRateLimitCodeWins() {
	s.reply = reply{status: http.StatusForbidden, body: `{"errors":[{"code":185,"message":"User is over daily status update limit."}]}`}
	_, err := NewStatusesPublisher(s.cfg()).Publish(bCtx.Background(), text)
	pErr := domain.ClassifyPublishError(err)
	s.Equal(domain.PublishErrorRateLimit, pErr.Kind)
	s.True(pErr.ResetAt.IsZero())
}

func (s *twitterSuite) TestStatusesAuth() {
	s.reply = reply{status: http.StatusUnauthorized, body: `{"errors":[{"code":32,"message":"Could not authenticate you."}]}`}
	_, err := NewStatusesPublisher(s.cfg()).Publish(bCtx.Background(), text)
	s.Equal(domain.PublishErrorAuth, domain.ClassifyPublishError(err).Kind)
}

func (s *twitterSuite) TestStatusesForbiddenWithoutCode() {
	s.reply = reply{status: http.StatusForbidden, body: `forbidden`}
	_, err := NewStatusesPublisher(s.cfg()).Publish(bCtx.Background(), text)
	s.Equal(domain.PublishErrorAuth, domain.ClassifyPublishError(err).Kind)
}

func (s *twitterSuite) TestStatusesServerError() {
	s.reply = reply{status: http.StatusServiceUnavailable, body: `{"errors":[{"code":130,"message":"Over capacity"}]}`}
	_, err := NewStatusesPublisher(s.cfg()).Publish(bCtx.Background(), text)
	s.Equal(domain.PublishErrorTransient, domain.ClassifyPublishError(err).Kind)
	s.ErrorIs(err, ErrStatusCodeNotOk)
}

func (s *twitterSuite) TestStatusesMalformedResponse() {
	s.reply = reply{status: http.StatusOK, body: `<html>`}
	_, err := NewStatusesPublisher(s.cfg()).Publish(bCtx.Background(), text)
	s.Equal(domain.PublishErrorTransient, domain.ClassifyPublishError(err).Kind)
}

func (s *twitterSuite) TestStatusesNetworkError() {
	cfg := s.cfg()
	s.server.Close()
	_, err := NewStatusesPublisher(cfg).Publish(bCtx.Background(), text)
	s.Error(err)
	s.Equal(domain.PublishErrorTransient, domain.ClassifyPublishError(err).Kind)
}

func (s *twitterSuite) TestTweetsSendsRawJson() {
	s.reply = reply{status: http.StatusCreated, body: `{"data":{"id":"200","text":"echo"}}`}
	ack, err := NewTweetsPublisher(s.cfg()).Publish(bCtx.Background(), text)
	s.Require().NoError(err)
	s.Equal(&domain.Ack{Id: "200", Text: "echo"}, ack)
	s.Equal("/2/tweets", s.path)
	s.Equal("application/json", s.contentType)

	req := tweetReq{}
	s.Require().NoError(json.Unmarshal(s.rawBody, &req))
	s.Equal(text, req.Text)
}

func (s *twitterSuite) TestTweetsPercentOverride() {
	s.reply = reply{status: http.StatusCreated, body: `{"data":{"id":"200","text":"echo"}}`}
	cfg := s.cfg()
	cfg.Encoding = announcement.EncodingPercent
	_, err := NewTweetsPublisher(cfg).Publish(bCtx.Background(), text)
	s.Require().NoError(err)

	req := tweetReq{}
	s.Require().NoError(json.Unmarshal(s.rawBody, &req))
	s.Equal(announcement.EncodeURIComponent(text), req.Text)
}

func (s *twitterSuite) TestTweetsRateLimit() {
	s.reply = reply{
		status: http.StatusTooManyRequests,
		header: map[string]string{"x-rate-limit-reset": "1704103200"},
		body:   `{"title":"Too Many Requests","detail":"Too Many Requests","type":"about:blank","status":429}`,
	}
	_, err := NewTweetsPublisher(s.cfg()).Publish(bCtx.Background(), text)
	pErr := domain.ClassifyPublishError(err)
	s.Equal(domain.PublishErrorRateLimit, pErr.Kind)
	s.Equal(time.Unix(1704103200, 0), pErr.ResetAt)
}

func (s *twitterSuite) TestTweetsForbidden() {
	s.reply = reply{status: http.StatusForbidden, body: `{"title":"Forbidden","detail":"You are not permitted to perform this action.","status":403}`}
	_, err := NewTweetsPublisher(s.cfg()).Publish(bCtx.Background(), text)
	s.Equal(domain.PublishErrorAuth, domain.ClassifyPublishError(err).Kind)
	s.Contains(err.Error(), "not permitted")
}

func (s *twitterSuite) TestTweetsMissingEcho() {
	s.reply = reply{status: http.StatusCreated, body: `{"data":{}}`}
	_, err := NewTweetsPublisher(s.cfg()).Publish(bCtx.Background(), text)
	s.ErrorIs(err, ErrEmptyEcho)
}
