package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ValidDocument(t *testing.T) {
	raw := []byte(`{
		"nodes": [
			{"id": "n1", "type": "party", "data": {"role": "freelancer", "name": "Sarah Chen"}},
			{"id": "n2", "type": "payment", "data": {"amount": 800, "currency": "GBP"}}
		],
		"edges": [{"from": "n1", "to": "n2"}]
	}`)

	doc, err := Parse(raw)
	require.NoError(t, err)

	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, "party", doc.Nodes[0].Type)
	assert.Equal(t, "Sarah Chen", doc.Nodes[0].Data.String("name"))
	require.Len(t, doc.Edges, 1)
}

func TestParse_RejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not json", input: `{{{`},
		{name: "missing nodes", input: `{"edges": []}`},
		{name: "node without type", input: `{"nodes": [{"id": "n1", "data": {}}]}`},
		{name: "empty type", input: `{"nodes": [{"id": "n1", "type": "", "data": {}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestData_Accessors(t *testing.T) {
	data := Data{
		"name":     "Logo design",
		"amount":   800.0,
		"quantity": "3",
		"criteria": []any{"matches brief", "vector format"},
		"ignored":  []any{1, 2},
	}

	assert.Equal(t, "Logo design", data.String("missing", "name"))
	assert.Equal(t, "", data.String("absent"))

	amount, ok := data.Float("amount")
	assert.True(t, ok)
	assert.Equal(t, 800.0, amount)

	quantity, ok := data.Int("quantity")
	assert.True(t, ok)
	assert.Equal(t, 3, quantity)

	_, ok = data.Float("absent")
	assert.False(t, ok)

	assert.Equal(t, []string{"matches brief", "vector format"}, data.Strings("criteria"))
	assert.Empty(t, data.Strings("ignored"))
	assert.Nil(t, data.Strings("absent"))
}
