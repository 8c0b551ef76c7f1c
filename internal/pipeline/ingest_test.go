package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainerrors "go-wood-dashboard/internal/errors"
	"go-wood-dashboard/internal/model"
)

const sampleCSV = "\ufeffAÑO,SEMESTRE,TRIMESTRE,DPTO,MUNICIPIO,ESPECIE,TIPO_PRODUCTO,FUENTE,VOLUMEN_M3\n" +
	"2019,1,1,ANTIOQUIA,YARUMAL,Pinus patula,ROLLIZA,PLANTACION,12.5\n" +
	"2019,1,2,Antioquia,Yarumal,Eucalyptus grandis,ROLLIZA,PLANTACION,\n" +
	"2020,2,III,CALDAS,MANIZALES,Pinus patula,ASERRADA,PLANTACION,abc\n" +
	",,,,,,,,\n" +
	"2020,2,4,META,PUERTO LOPEZ,Acacia mangium,ROLLIZA,PLANTACION,\"1.234,5\"\n"

func TestReadRecords(t *testing.T) {
	records, report, err := ReadRecords([]byte(sampleCSV), model.DefaultColumns())
	require.NoError(t, err)
	require.Len(t, records, 4, "blank rows are dropped")

	assert.Empty(t, report.MissingColumns())
	assert.Equal(t, "AÑO", report.Header[0])
	assert.Equal(t, 4, report.Rows)

	assert.Equal(t, 2019, records[0].Year)
	assert.Equal(t, "Pinus patula", records[0].Species)
	assert.True(t, records[0].HasVolume)
	assert.Equal(t, 12.5, records[0].Volume)

	assert.False(t, records[1].HasVolume)
	assert.Equal(t, 1, report.NullCounts[model.FieldVolume])

	assert.Equal(t, 3, records[2].Quarter)
	assert.False(t, records[2].HasVolume, "malformed volume is read as null")
	assert.Equal(t, 1, report.Malformed[model.FieldVolume])
	require.Len(t, report.Samples, 1)
	assert.Equal(t, "abc", report.Samples[0].Value)
	assert.Equal(t, 4, report.Samples[0].Line)

	assert.Equal(t, 1234.5, records[3].Volume)

	err = MalformedError(report)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrMalformedValue))
}

func TestReadRecordsMissingColumn(t *testing.T) {
	data := "AÑO;DPTO;ESPECIE\n2019;CALDAS;Pinus\n"
	records, report, err := ReadRecords([]byte(data), model.DefaultColumns())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "CALDAS", records[0].Department)

	assert.Contains(t, report.MissingColumns(), "VOLUMEN_M3")
	assert.Equal(t, 1, report.NullCounts[model.FieldVolume])

	err = RequireColumns(report.Columns, model.FieldSpecies, model.FieldVolume)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrMissingColumn))
	assert.Contains(t, err.Error(), "VOLUMEN_M3")
	assert.NoError(t, RequireColumns(report.Columns, model.FieldSpecies, model.FieldYear))
}

func TestResolveColumnsToleratesDrift(t *testing.T) {
	header := []string{"Año", " departamento ", "Volumen m3", "Especie"}
	mapping := model.DefaultColumns()
	mapping[model.FieldDepartment] = "DEPARTAMENTO"

	statuses := ResolveColumns(header, mapping)
	byField := make(map[model.Field]model.ColumnStatus)
	for _, s := range statuses {
		byField[s.Field] = s
	}

	assert.True(t, byField[model.FieldYear].Present)
	assert.Equal(t, 1, byField[model.FieldDepartment].Index)
	assert.Equal(t, "Volumen m3", byField[model.FieldVolume].Resolved)
	assert.False(t, byField[model.FieldMunicipality].Present)
}

func TestReadRecordsEmpty(t *testing.T) {
	_, _, err := ReadRecords(nil, model.DefaultColumns())
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNoData))
}

func TestFetchSourceRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	retry := model.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, BackoffMultiplier: 2}
	data, err := FetchSource(context.Background(), srv.URL, time.Second, retry, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchSourceDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	retry := model.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond}
	_, err := FetchSource(context.Background(), srv.URL, time.Second, retry, zap.NewNop())
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnavailable))
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchSourceMissingFile(t *testing.T) {
	_, err := FetchSource(context.Background(), filepath.Join(t.TempDir(), "none.csv"), 0, model.RetryConfig{}, zap.NewNop())
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnavailable))
}

func TestBackoffDelayCapped(t *testing.T) {
	cfg := model.RetryConfig{InitialDelay: time.Second, MaxDelay: 3 * time.Second, BackoffMultiplier: 2}
	assert.Equal(t, time.Second, backoffDelay(cfg, 1))
	assert.Equal(t, 2*time.Second, backoffDelay(cfg, 2))
	assert.Equal(t, 3*time.Second, backoffDelay(cfg, 5))
}
