package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/vocabnote/internal/config"
	"github.com/xxxsen/vocabnote/internal/pkg/response"
)

// PropertiesHandler exposes the switches a login page needs before any
// session exists.
type PropertiesHandler struct {
	properties config.Properties
	loginPath  string
}

func NewPropertiesHandler(properties config.Properties, loginPath string) *PropertiesHandler {
	return &PropertiesHandler{properties: properties, loginPath: loginPath}
}

func (h *PropertiesHandler) Get(c *gin.Context) {
	response.Success(c, gin.H{
		"enable_user_register": h.properties.EnableUserRegister,
		"login_path":           h.loginPath,
	})
}
