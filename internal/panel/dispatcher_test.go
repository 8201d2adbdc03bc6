package panel_test

//go:generate mockgen -source=renderer.go -destination=mocks/mocks.go -package=mocks Renderer

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"metapanel/internal/panel"
	"metapanel/internal/panel/mocks"
	"metapanel/internal/panel/render"
)

type DispatcherSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	renderer *mocks.MockRenderer
	mounted  []string
	dispatch *panel.Dispatcher
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.renderer = mocks.NewMockRenderer(s.ctrl)
	s.mounted = nil
	s.dispatch = panel.NewDispatcher(panel.DefaultRegistry(), func(id string) panel.Renderer {
		s.mounted = append(s.mounted, id)
		return s.renderer
	})
}

func (s *DispatcherSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *DispatcherSuite) TestRouteRendersThroughMountedRenderer() {
	gomock.InOrder(
		s.renderer.EXPECT().SetClass(panel.SelSlot, panel.ClassActive, true),
		s.renderer.EXPECT().SetText(panel.SelM17Source, "W1AW"),
		s.renderer.EXPECT().SetText(panel.SelM17Destination, "ALL"),
	)

	ok := s.dispatch.Route("openwebrx-panel-metadata-m17", panel.Event{
		Protocol:    panel.ProtocolM17,
		Sync:        panel.SyncVoice,
		Source:      "W1AW",
		Destination: "ALL",
	})
	s.True(ok)
}

func (s *DispatcherSuite) TestPanelsAreBuiltOncePerElement() {
	first := s.dispatch.Panel("openwebrx-panel-metadata-ysf")
	second := s.dispatch.Panel("openwebrx-panel-metadata-ysf")

	s.Same(first, second)
	s.Equal([]string{"openwebrx-panel-metadata-ysf"}, s.mounted)
	s.Equal([]string{panel.ProtocolYSF}, first.Modes())
}

func (s *DispatcherSuite) TestUnknownIdentifiersGetTheNoopPanel() {
	// the mock has no expectations, so any render fails the test
	for _, id := range []string{
		"openwebrx-panel-metadata-pocsag",
		"openwebrx-panel-metadata-DMR",
		"openwebrx-panel-receiver",
		"",
	} {
		s.Run(id, func() {
			ok := s.dispatch.Route(id, panel.Event{Protocol: panel.ProtocolDMR, Sync: panel.SyncVoice, Slot: panel.Int(0)})
			s.False(ok)
			s.Empty(s.dispatch.Panel(id).Modes())
		})
	}
}

func (s *DispatcherSuite) TestRouteIgnoresOtherProtocols() {
	ok := s.dispatch.Route("openwebrx-panel-metadata-nxdn", panel.Event{Protocol: panel.ProtocolDMR, Sync: panel.SyncVoice})
	s.False(ok)
}

func (s *DispatcherSuite) TestRegistryIsCopiedAtConstruction() {
	reg := panel.Registry{"m17": panel.NewM17Panel}
	d := panel.NewDispatcher(reg, nil)
	reg["ysf"] = panel.NewYSFPanel

	s.Empty(d.Panel("openwebrx-panel-metadata-ysf").Modes())
	s.Equal([]string{panel.ProtocolM17}, d.Panel("openwebrx-panel-metadata-m17").Modes())
}

func (s *DispatcherSuite) TestBroadcastReachesOnlyMatchingPanel() {
	rec := render.NewRecorder("")
	d := panel.NewDispatcher(panel.DefaultRegistry(), func(id string) panel.Renderer {
		return rec.For(id)
	})
	d.MountRegistry()
	s.Len(d.Elements(), 5)

	handled := d.Broadcast(panel.Event{Protocol: panel.ProtocolNXDN, Sync: panel.SyncVoice, Source: "1234"})
	s.Equal([]string{"openwebrx-panel-metadata-nxdn"}, handled)
	for _, dir := range rec.Directives() {
		s.Equal("openwebrx-panel-metadata-nxdn", dir.Element)
	}

	s.Empty(d.Broadcast(panel.Event{Protocol: "APRS"}))

	d.Clear()
	for id, st := range d.States() {
		s.False(st.Active, id)
	}
}

func (s *DispatcherSuite) TestTagOf() {
	tag, ok := panel.TagOf(panel.ElementID("dstar"))
	s.True(ok)
	s.Equal("dstar", tag)

	_, ok = panel.TagOf("openwebrx-panel-metadata-")
	s.False(ok)
	_, ok = panel.TagOf("openwebrx-panel-metadata-d-star")
	s.False(ok)
}

func (s *DispatcherSuite) TestRegistryOnly() {
	reg := panel.DefaultRegistry().Only("dmr", "m17", "pocsag")
	s.Equal([]string{"dmr", "m17"}, reg.Tags())
}
