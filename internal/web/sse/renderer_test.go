package sse

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/signupgate/internal/model"
)

type RendererTestSuite struct {
	suite.Suite
	renderer *Renderer
}

func TestRendererTestSuite(t *testing.T) {
	suite.Run(t, new(RendererTestSuite))
}

func (s *RendererTestSuite) SetupTest() {
	s.renderer = NewRenderer()
}

func (s *RendererTestSuite) render(snap model.GateSnapshot) *goquery.Document {
	html, err := s.renderer.RenderSignup(context.Background(), snap)
	s.Require().NoError(err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	s.Require().NoError(err)
	return doc
}

func (s *RendererTestSuite) TestChallengingRendersChallenge() {
	doc := s.render(model.GateSnapshot{
		State:     model.StateChallenging,
		Challenge: &model.ChallengeView{Kind: model.ChallengeDelay},
	})

	slot := doc.Find("#challenge-slot")
	s.Equal("innerHTML", slot.AttrOr("hx-swap-oob", ""))
	s.Equal("delay", slot.Find("#challenge").AttrOr("data-kind", ""))
	s.Equal(1, slot.Find("#acknowledge").Length())
}

func (s *RendererTestSuite) TestSubmittingRendersVerifying() {
	doc := s.render(model.GateSnapshot{State: model.StateVerified, Submitting: true})

	s.Equal("verified", doc.Find("#challenge-slot #challenge").AttrOr("data-kind", ""))
}

func (s *RendererTestSuite) TestIdleClearsPanel() {
	doc := s.render(model.GateSnapshot{State: model.StateIdle})

	s.Equal(0, doc.Find("#challenge-slot").Children().Length())
	s.Equal("", doc.Find("#form-error").Text())
}

func (s *RendererTestSuite) TestErrorIsEscaped() {
	html, err := s.renderer.RenderSignup(context.Background(), model.GateSnapshot{
		State: model.StateIdle,
		Error: `<script>alert("x")</script>`,
	})
	s.Require().NoError(err)
	s.NotContains(html, "<script>")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	s.Require().NoError(err)
	s.Equal(`<script>alert("x")</script>`, doc.Find("#form-error").Text())
	s.Equal(0, doc.Find("script").Length())
}

func (s *RendererTestSuite) TestWrapForOOBSwap() {
	s.Equal(`<div id="x" hx-swap-oob="innerHTML"><p>y</p></div>`, WrapForOOBSwap("x", "<p>y</p>"))
}
