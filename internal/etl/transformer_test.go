package etl

import (
	"testing"

	"github.com/cleanflow/bedsync/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransformer(t *testing.T, cfg models.IntegrationConfig, mappings ...models.LocationMapping) *Transformer {
	t.Helper()
	tr, err := NewTransformer(cfg, mappings)
	require.NoError(t, err)
	return tr
}

func TestTransformItem(t *testing.T) {
	tr := newTestTransformer(t, models.DefaultIntegrationConfig())

	t.Run("available bed", func(t *testing.T) {
		c, err := tr.TransformItem(ExternalRow{"code1": "QTO101", "tipobloq": "L"})
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "Quarto", c.Name)
		assert.Equal(t, "101", c.Number)
		assert.Equal(t, models.StatusAvailable, c.Status)
		assert.Equal(t, "QTO101", c.ExternalCode)
		assert.Equal(t, "L", c.ExternalStatus)
		assert.False(t, c.LastExternalUpdate.IsZero())
	})

	t.Run("byte values from the driver", func(t *testing.T) {
		c, err := tr.TransformItem(ExternalRow{"code1": []byte("APTO202 "), "tipobloq": []byte("*")})
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "Apartamento", c.Name)
		assert.Equal(t, models.StatusOccupied, c.Status)
		assert.Equal(t, "APTO202", c.ExternalCode)
	})

	t.Run("unmapped status is skipped", func(t *testing.T) {
		c, err := tr.TransformItem(ExternalRow{"code1": "QTO101", "tipobloq": "X"})
		assert.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("missing code", func(t *testing.T) {
		_, err := tr.TransformItem(ExternalRow{"tipobloq": "L"})
		var mf *MissingFieldError
		require.ErrorAs(t, err, &mf)
		assert.Equal(t, "code1", mf.Field)
		assert.Equal(t, "code field (code1) not found", err.Error())
	})

	t.Run("empty status", func(t *testing.T) {
		_, err := tr.TransformItem(ExternalRow{"code1": "QTO101", "tipobloq": nil})
		var mf *MissingFieldError
		require.ErrorAs(t, err, &mf)
		assert.Equal(t, "status", mf.Kind)
	})
}

func TestTransformItem_NameAndNumberColumns(t *testing.T) {
	cfg := models.DefaultIntegrationConfig()
	cfg.FieldMappings.NameField = "ala"
	cfg.FieldMappings.NumberField = "leito"

	tr := newTestTransformer(t, cfg, models.LocationMapping{
		ExternalCode: "MAPPED", InternalName: "Suite", InternalNumber: "1", IsActive: true,
	})

	c, err := tr.TransformItem(ExternalRow{"code1": "QTO101", "tipobloq": "L", "ala": "Pediatria", "leito": 7})
	require.NoError(t, err)
	assert.Equal(t, "Pediatria", c.Name)
	assert.Equal(t, "7", c.Number)

	// a blank column keeps the parsed value
	c, err = tr.TransformItem(ExternalRow{"code1": "QTO101", "tipobloq": "L", "ala": "  "})
	require.NoError(t, err)
	assert.Equal(t, "Quarto", c.Name)

	// mappings beat columns
	c, err = tr.TransformItem(ExternalRow{"code1": "MAPPED", "tipobloq": "L", "ala": "Pediatria"})
	require.NoError(t, err)
	assert.Equal(t, "Suite", c.Name)
	assert.Equal(t, "1", c.Number)
}

func TestTransform_Batch(t *testing.T) {
	tr := newTestTransformer(t, models.DefaultIntegrationConfig())

	rows := []ExternalRow{
		{"code1": "QTO101", "tipobloq": "L"},
		{"code1": "APTO202", "tipobloq": "*"},
		{"code1": "QTO103", "tipobloq": "X"},
		{"tipobloq": "L"},
		{"code1": "", "tipobloq": "*"},
	}
	res := tr.Transform(rows)

	assert.False(t, res.Success)
	assert.Equal(t, TransformStats{Total: 5, Transformed: 2, Skipped: 1, Errors: 2}, res.Stats)
	assert.Len(t, res.Data, 2)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, rows[3], res.Errors[0].Row)
	assert.Contains(t, res.Errors[0].Error, "code1")

	s := res.Stats
	assert.Equal(t, s.Total, s.Transformed+s.Skipped+s.Errors)
}

func TestTransform_Empty(t *testing.T) {
	tr := newTestTransformer(t, models.DefaultIntegrationConfig())
	res := tr.Transform(nil)
	assert.True(t, res.Success)
	assert.Equal(t, TransformStats{}, res.Stats)
	assert.Empty(t, res.Data)
}

func TestTestTransformation(t *testing.T) {
	preview := TestTransformation(models.DefaultIntegrationConfig(), nil)
	assert.True(t, preview.Success)
	require.Len(t, preview.Result.Data, 2)
	assert.Equal(t, "Quarto", preview.Result.Data[0].Name)
	assert.Equal(t, models.StatusOccupied, preview.Result.Data[1].Status)

	cfg := models.DefaultIntegrationConfig()
	cfg.Transformation.CustomTransform = true
	preview = TestTransformation(cfg, nil)
	assert.False(t, preview.Success)
	assert.Contains(t, preview.Message, "Invalid transformation settings")
}
