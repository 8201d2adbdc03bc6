package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"metapanel/internal/panel"
	"metapanel/internal/session/models"
	"metapanel/pkg/testutil"
)

func TestDMRSlotScenario(t *testing.T) {
	testutil.Given(t, "a session showing the DMR panel", func(t *testing.T) {
		router := newRouter(t)
		session := createSession(t, router, "dmr")
		base := "/sessions/" + session.ID.String()
		post := func(t *testing.T, body string) *models.Update {
			rr := testutil.DoRequest(router, testutil.NewRequestWithBody(t, http.MethodPost, base+"/metadata", body))
			testutil.AssertStatusOK(t, rr)
			return testutil.UnmarshalResponse[models.Update](t, rr)
		}
		snapshot := func(t *testing.T) panel.State {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, base))
			testutil.AssertStatusOK(t, rr)
			return testutil.UnmarshalResponse[models.Snapshot](t, rr).Panels[panel.ElementID("dmr")]
		}

		testutil.When(t, "voice starts on timeslot 2", func(t *testing.T) {
			post(t, `{"protocol":"DMR","sync":"voice","slot":1,"source":"2623266","type":"direct","target":"2620001"}`)

			testutil.Then(t, "only that slot is active", func(t *testing.T) {
				st := snapshot(t)
				assert.False(t, st.Slots[0].Active)
				assert.True(t, st.Slots[1].Active)
				assert.Equal(t, panel.DMRDirect, st.Slots[1].Category)
			})
		})

		testutil.When(t, "the decoder loses sync on that slot", func(t *testing.T) {
			post(t, `{"protocol":"DMR","slot":1}`)

			testutil.Then(t, "the slot is cleared", func(t *testing.T) {
				st := snapshot(t)
				assert.False(t, st.Slots[1].Active)
				assert.Empty(t, st.Slots[1].Fields)
			})
			testutil.And(t, "the other slot is untouched", func(t *testing.T) {
				assert.Empty(t, snapshot(t).Slots[0].Fields)
			})
		})

		testutil.When(t, "an event arrives without a slot", func(t *testing.T) {
			post(t, `{"protocol":"DMR","sync":"voice","slot":0,"source":"1"}`)
			update := post(t, `{"protocol":"DMR","sync":"voice"}`)

			testutil.Then(t, "both slots are reset", func(t *testing.T) {
				assert.NotEmpty(t, update.Directives)
				st := snapshot(t)
				assert.False(t, st.Active)
			})
		})
	})
}
