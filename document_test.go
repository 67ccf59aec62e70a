package moreremesas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, op operation, inner string) *Node {
	t.Helper()

	node, err := parseResponse(op.schema, []byte(soapResponse(op, `<ResponseCode>1000</ResponseCode>`+inner)))
	require.NoError(t, err)
	return node
}

func TestNodeNavigation(t *testing.T) {
	node := mustParse(t, opBranches, `<Branches><Branch><BranchId>1</BranchId><Name> Main </Name></Branch>`+
		`<Branch><BranchId>2</BranchId></Branch></Branches><NextID>2</NextID>`)

	assert.Equal(t, "2", node.StringAt("NextID"))
	assert.Equal(t, "1", node.StringAt("Branches", "Branch", "BranchId"), "Get follows the first item")
	assert.Equal(t, "Main", node.Get("Branches", "Branch").StringAt("Name"), "text is trimmed")
	assert.Len(t, node.List("Branches", "Branch"), 2)

	assert.Nil(t, node.Get("Missing", "Path"))
	assert.Equal(t, "", node.StringAt("Missing"))
	assert.NotNil(t, node.List("Missing", "Path"))
	assert.Empty(t, node.List("Missing", "Path"))
	assert.Equal(t, "2", node.First("Nope", "NextID"))
}

func TestNilNodeIsSafe(t *testing.T) {
	var n *Node

	assert.Nil(t, n.Fields())
	assert.Nil(t, n.Field("x"))
	assert.Nil(t, n.Get("x"))
	assert.Empty(t, n.List("x"))
	assert.Equal(t, "", n.StringAt("x"))
	assert.Nil(t, n.Value())
	assert.Equal(t, map[string]any{}, n.Map())

	raw, err := json.Marshal(n)
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))
}

func TestNodeJSONKeepsDocumentOrder(t *testing.T) {
	node := mustParse(t, opRates, `<Zeta>1</Zeta><Alpha>2</Alpha><Rates><Rate><ID>9</ID></Rate></Rates>`)

	raw, err := json.Marshal(node)
	require.NoError(t, err)
	assert.Equal(t, `{"ResponseCode":"1000","Zeta":"1","Alpha":"2","Rates":{"Rate":[{"ID":"9"}]}}`, string(raw))
}

func TestNodeJSONEscapesText(t *testing.T) {
	node := mustParse(t, opRates, `<Note>a &amp; "b"</Note>`)

	raw, err := json.Marshal(node)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, `a & "b"`, back["Note"])
}
