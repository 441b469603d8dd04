package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/water_backoffice/internal/models"
	"github.com/Skotchmaster/water_backoffice/internal/notify"
	"github.com/Skotchmaster/water_backoffice/internal/service"
)

func TestCommuniques(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	admin := ts.adminToken(t)
	body := map[string]string{"title": "Corte programado", "content": "Sin servicio el lunes", "typeStatement": "Aviso"}

	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodPost, "/api/communicate", "", body).Code)

	rec := ts.do(http.MethodPost, "/api/communicate", admin, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decode[communiqueCreated](t, rec).Data
	assert.Equal(t, service.NotificationQueued, got.NotificationStatus)
	require.NotNil(t, got.Communique)
	id := got.Communique.ID

	ts.wait(t)
	sent := ts.push.all()
	require.Len(t, sent, 1)
	assert.Equal(t, notify.TopicCommuniques, sent[0].Topic)

	rec = ts.do(http.MethodGet, "/api/communicate", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Communique](t, rec).Data, 1)

	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/api/communicate/"+id, "", nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/communicate/"+id, admin, nil).Code)

	body["title"] = "Corte reprogramado"
	rec = ts.do(http.MethodPut, "/api/communicate/"+id, admin, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Corte reprogramado", decode[models.Communique](t, rec).Data.Title)

	body["title"] = ""
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPut, "/api/communicate/"+id, admin, body).Code)

	require.Equal(t, http.StatusOK, ts.do(http.MethodDelete, "/api/communicate/"+id, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, "/api/communicate/"+id, admin, nil).Code)
}

func TestReferenceData(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	tok := ts.adminToken(t)

	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodPost, "/api/block", "", map[string]string{"name": "B"}).Code)

	rec := ts.do(http.MethodPost, "/api/block", tok, map[string]string{"name": "Bloque Norte"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	block := decode[models.Block](t, rec).Data

	rec = ts.do(http.MethodPost, "/api/neighborhood-colony", tok, map[string]string{"name": "Kennedy", "blockId": block.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	nb := decode[models.NeighborhoodColony](t, rec).Data

	rec = ts.do(http.MethodPost, "/api/neighborhood-colony", tok, map[string]string{"name": "Kennedy", "blockId": "missing"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/api/neighborhood-colony/by-block/"+block.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.NeighborhoodColony](t, rec).Data, 1)

	rec = ts.do(http.MethodPost, "/api/lines", tok, map[string]string{"name": "Linea 1", "neighborhoodColonyId": nb.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = ts.do(http.MethodGet, "/api/lines/by-neighborhood/"+nb.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Line](t, rec).Data, 1)

	points := []struct {
		name string
		lat  float64
		want int
	}{
		{"inside", 14.07, http.StatusCreated},
		{"out of range", 91, http.StatusBadRequest},
	}
	for _, p := range points {
		rec = ts.do(http.MethodPost, "/api/districts-points", tok, map[string]any{
			"latitude": p.lat, "longitude": -87.19, "neighborhoodColonyId": nb.ID,
		})
		assert.Equal(t, p.want, rec.Code, p.name)
	}
	rec = ts.do(http.MethodGet, "/api/districts-points/byNeighborhoodsColonies/"+nb.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.DistrictPoint](t, rec).Data, 1)

	rec = ts.do(http.MethodPut, "/api/block/"+block.ID, tok, map[string]string{"name": "Bloque Sur"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bloque Sur", decode[models.Block](t, rec).Data.Name)

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/block/missing", "", nil).Code)
}

func TestRegistrations(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	tok := ts.adminToken(t)

	rec := ts.do(http.MethodPost, "/api/block", tok, map[string]string{"name": "B"})
	require.Equal(t, http.StatusCreated, rec.Code)
	block := decode[models.Block](t, rec).Data
	rec = ts.do(http.MethodPost, "/api/neighborhood-colony", tok, map[string]string{"name": "Alameda", "blockId": block.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	nb := decode[models.NeighborhoodColony](t, rec).Data

	body := map[string]any{"date": "2024-05-01T06:30:00Z", "observations": "manana", "neighborhoodIds": []string{nb.ID}}
	rec = ts.do(http.MethodPost, "/api/registration", tok, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reg := decode[models.WaterRegistration](t, rec).Data
	assert.Equal(t, []string{"Alameda"}, reg.NeighborhoodNames())

	ts.wait(t)
	sent := ts.push.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "Se ha registrado agua para: Alameda", sent[0].Body)

	rec = ts.do(http.MethodPost, "/api/registration", tok, map[string]any{"date": "2024-05-01T06:30:00Z", "neighborhoodIds": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/api/registration/"+reg.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Equal(t, http.StatusOK, ts.do(http.MethodDelete, "/api/registration/"+reg.ID, tok, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/registration/"+reg.ID, "", nil).Code)
}

func TestSubscribers(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	tok := ts.adminToken(t)

	rec := ts.do(http.MethodGet, "/api/subscribers/buscar-abonado/1001", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sum := decode[map[string]any](t, rec).Data
	assert.Equal(t, "J**N P***Z", sum["nombre_abonado"])

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/subscribers/buscar-abonado/2002", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/api/subscribers/comentario/1001", "", nil).Code)

	rec = ts.do(http.MethodGet, "/api/subscribers/buscar-abonado-completo/1001", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "JUAN PEREZ", decode[map[string]any](t, rec).Data["nombreabonado"])

	rec = ts.do(http.MethodGet, "/api/subscribers/comentario/1001", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]any](t, rec).Data, 1)

	rec = ts.do(http.MethodGet, "/api/subscribers/historial/1001", tok, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decode[any](t, rec)
	assert.Equal(t, "internal error", env.Message)
	assert.NotContains(t, rec.Body.String(), "upstream timeout")
}

func TestHealthAndFallbacks(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/health/live", "", nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/health/ready", "", nil).Code)

	rec := ts.do(http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decode[any](t, rec)
	assert.False(t, env.Status)
	assert.Equal(t, http.StatusNotFound, env.StatusCode)

	rec = ts.do(http.MethodPost, "/api/account/login", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
