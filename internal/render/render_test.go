package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBytesEnv(t *testing.T) {
	t.Setenv("SANDBOX_TEST_NAME", "from-env")

	out, err := RenderBytes("config.yaml", []byte(`name: {{ env "SANDBOX_TEST_NAME" }}`))
	require.NoError(t, err)
	assert.Equal(t, "name: from-env", string(out))
}

func TestRenderBytesMissingEnv(t *testing.T) {
	_, err := RenderBytes("config.yaml", []byte(`name: {{ env "SANDBOX_TEST_DEFINITELY_UNSET" }}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing env vars: SANDBOX_TEST_DEFINITELY_UNSET")
}

func TestRenderBytesEnvOr(t *testing.T) {
	out, err := RenderBytes("config.yaml", []byte(`listen: {{ envOr "SANDBOX_TEST_DEFINITELY_UNSET" ":8080" }}`))
	require.NoError(t, err)
	assert.Equal(t, "listen: :8080", string(out))

	t.Setenv("SANDBOX_TEST_LISTEN", ":9090")
	out, err = RenderBytes("config.yaml", []byte(`listen: {{ envOr "SANDBOX_TEST_LISTEN" ":8080" }}`))
	require.NoError(t, err)
	assert.Equal(t, "listen: :9090", string(out))
}

func TestRenderBytesDefault(t *testing.T) {
	out, err := RenderBytes("config.yaml", []byte(`value: {{ default "fallback" "" }}`))
	require.NoError(t, err)
	assert.Equal(t, "value: fallback", string(out))
}

func TestRenderBytesParseError(t *testing.T) {
	_, err := RenderBytes("config.yaml", []byte(`{{ env "X" `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse template")
}
