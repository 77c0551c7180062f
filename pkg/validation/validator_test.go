package validation

import (
	"encoding/json"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Username string `json:"username" binding:"required,uname"`
	Code     string `json:"code" binding:"omitempty,otp"`
}

func TestToDetails_FieldMessages(t *testing.T) {
	Init()
	err := binding.Validator.ValidateStruct(&registerReq{Email: "nope", Password: "123", Username: "al", Code: "12ab"})
	require.Error(t, err)

	d := ToDetails(err)
	assert.Equal(t, "must be a valid email", d["email"])
	assert.Equal(t, "must be 6 to 1024 characters long", d["password"])
	assert.Equal(t, "must be 3 to 32 characters long", d["username"])
	assert.Equal(t, "must be a 6-digit code", d["code"])
}

func TestToDetails_Required(t *testing.T) {
	Init()
	err := binding.Validator.ValidateStruct(&registerReq{})
	d := ToDetails(err)
	assert.Equal(t, "is required", d["email"])
	assert.Equal(t, "is required", d["password"])
	assert.NotContains(t, d, "code")
}

func TestToDetails_InvalidJSON(t *testing.T) {
	var v registerReq
	err := json.Unmarshal([]byte(`{"email":`), &v)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
	assert.Nil(t, ToDetails(nil))
}

func TestInit_Idempotent(t *testing.T) {
	Init()
	Init()
	assert.NoError(t, binding.Validator.ValidateStruct(&registerReq{Email: "a@x.com", Password: "secret1", Username: "alice"}))
}
