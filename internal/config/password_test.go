package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPasswordConfig(t *testing.T) {
	tests := []struct {
		name       string
		bcryptCost string
		minLength  string
		wantCost   int
		wantMin    int
		wantErr    bool
	}{
		{"defaults", "", "", 12, 8, false},
		{"custom", "10", "12", 10, 12, false},
		{"cost too low", "9", "", 0, 0, true},
		{"cost too high", "15", "", 0, 0, true},
		{"invalid cost", "doce", "", 0, 0, true},
		{"invalid min length", "12", "x", 0, 0, true},
		{"zero min length", "12", "0", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BCRYPT_COST", tt.bcryptCost)
			t.Setenv("PASSWORD_MIN_LENGTH", tt.minLength)
			t.Setenv("PASSWORD_PEPPER", "")

			cfg, err := NewPasswordConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, cfg.BcryptCost)
			assert.Equal(t, tt.wantMin, cfg.MinLength)
		})
	}
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10, MinLength: 8}

	hash, err := cfg.HashPassword("contraseña1")
	require.NoError(t, err)
	assert.NotEqual(t, "contraseña1", hash)
	assert.True(t, cfg.VerifyPassword("contraseña1", hash))
	assert.False(t, cfg.VerifyPassword("contraseña2", hash))
	assert.False(t, cfg.VerifyPassword("contraseña1", ""))

	_, err = cfg.HashPassword("corta")
	assert.Error(t, err)
}

func TestPasswordConfig_Pepper(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: 10, MinLength: 8, Pepper: "pimienta"}
	plain := &PasswordConfig{BcryptCost: 10, MinLength: 8}

	hash, err := peppered.HashPassword("contraseña1")
	require.NoError(t, err)
	assert.True(t, peppered.VerifyPassword("contraseña1", hash))
	assert.False(t, plain.VerifyPassword("contraseña1", hash))
}
