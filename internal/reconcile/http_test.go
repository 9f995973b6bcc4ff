package reconcile_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examreg/internal/examinee/handler"
	"examreg/internal/examinee/models"
	"examreg/internal/examinee/service"
	"examreg/internal/examinee/store"
	lookupservice "examreg/internal/lookup/service"
	lookupstore "examreg/internal/lookup/store"
	"examreg/internal/reconcile"
	id "examreg/pkg/domain"
	dErrors "examreg/pkg/domain-errors"
)

func TestHTTPTransportAgainstAdminEndpoint(t *testing.T) {
	ctx := context.Background()
	lookups := lookupstore.NewInMemory()
	require.NoError(t, lookupstore.SeedDefaults(ctx, lookups))
	catalog := lookupservice.New(lookups)
	mem := store.NewInMemory()
	svc := service.New(mem, mem, catalog)

	submissions := make([]models.Submission, 5)
	for i := range submissions {
		submissions[i] = models.Submission{
			ExamineeType: "100", Name: "Examinee", Mobile: "0101234567" + string(rune('0'+i)),
			DepositNote: "paid", ParticipationStatus: models.ParticipationAttending,
		}
	}
	_, err := svc.Submit(ctx, id.NewAccountID(), service.SubmitRequest{
		Header:  models.ApplicationHeader{ChurchName: "Grace", Denomination: "P", ContactName: "Kim", ContactPhone: "0101"},
		Records: submissions,
	})
	require.NoError(t, err)

	router := chi.NewRouter()
	handler.New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).RegisterAdmin(router)
	server := httptest.NewServer(router)
	defer server.Close()

	list, err := svc.ListRecords(ctx, models.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, list, 5)

	saver := reconcile.NewSaver(
		reconcile.NewHTTPTransport(http.MethodPatch, server.URL+"/admin/records"),
		catalog,
		reconcile.WithCodedFields(models.CodedFieldType),
	)

	t.Run("one rejected row keeps all five dirty", func(t *testing.T) {
		grid := make([]reconcile.Row, len(list))
		dirty := reconcile.NewDirtySet()
		for i, r := range list {
			r.DepositNote = "edited"
			if i == 3 {
				r.RefundRequest = "Refund requested"
			}
			row := reconcile.RecordRow{AdminRow: r}
			grid[i] = row
			dirty.Mark(row.Key())
		}

		_, err := saver.Save(ctx, grid, dirty)
		var rejected *reconcile.RejectedError
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, 3, rejected.Index)
		assert.Equal(t, dErrors.CodeInvariantViolation, dErrors.CodeOf(err))
		assert.Equal(t, 5, dirty.Len())

		stored, err := svc.ListRecords(ctx, models.RecordFilter{DepositNote: "edited"})
		require.NoError(t, err)
		assert.Empty(t, stored, "the batch was rolled back")
	})

	t.Run("clean batch clears the sent keys", func(t *testing.T) {
		grid := make([]reconcile.Row, len(list))
		dirty := reconcile.NewDirtySet()
		for i, r := range list {
			r.FeeConfirmed = "Confirmed"
			row := reconcile.RecordRow{AdminRow: r}
			grid[i] = row
			if i%2 == 0 {
				dirty.Mark(row.Key())
			}
		}

		n, err := saver.Save(ctx, grid, dirty)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Zero(t, dirty.Len())

		confirmed, err := svc.ListRecords(ctx, models.RecordFilter{FeeConfirmed: models.Confirmed})
		require.NoError(t, err)
		assert.Len(t, confirmed, 3)
	})
}
