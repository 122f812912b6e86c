package auth

import (
	"testing"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCheckStudent(t *testing.T) {
	v := NewBcryptVerifier(bcrypt.MinCost)
	hash, err := v.Hash("soleil2024")
	require.NoError(t, err)

	tests := []struct {
		name     string
		student  models.Student
		password string
		wantErr  bool
	}{
		{
			name:     "temporary code before change",
			student:  models.Student{TemporaryPassword: "MJA-1234"},
			password: "MJA-1234",
		},
		{
			name:     "wrong temporary code",
			student:  models.Student{TemporaryPassword: "MJA-1234"},
			password: "MJA-4321",
			wantErr:  true,
		},
		{
			name:     "permanent password after change",
			student:  models.Student{PasswordHash: hash, PasswordChanged: true, TemporaryPassword: "MJA-1234"},
			password: "soleil2024",
		},
		{
			name:     "temporary code no longer valid after change",
			student:  models.Student{PasswordHash: hash, PasswordChanged: true, TemporaryPassword: "MJA-1234"},
			password: "MJA-1234",
			wantErr:  true,
		},
		{
			name:     "permanent password ignored before change",
			student:  models.Student{PasswordHash: hash, TemporaryPassword: "MJA-1234"},
			password: "soleil2024",
			wantErr:  true,
		},
		{
			name:     "no credential at all",
			student:  models.Student{},
			password: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckStudent(v, tt.student, tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCredentials)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckInstructor(t *testing.T) {
	v := NewBcryptVerifier(bcrypt.MinCost)
	hash, err := v.Hash("admin")
	require.NoError(t, err)

	i := models.Instructor{Username: "admin", PasswordHash: hash, Role: models.RoleAdmin}

	assert.NoError(t, CheckInstructor(v, i, "admin"))
	assert.ErrorIs(t, CheckInstructor(v, i, "Admin"), ErrInvalidCredentials)
	assert.ErrorIs(t, CheckInstructor(v, models.Instructor{}, "admin"), ErrInvalidCredentials)
}
