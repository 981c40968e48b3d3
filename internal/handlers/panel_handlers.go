// Package handlers exposes the panel's read-only HTTP API over the view
// model: the rendered display model, the raw snapshot, and a health probe.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"srvpanel/internal/middleware"
	"srvpanel/internal/panel"
	"srvpanel/internal/utils"
	"srvpanel/internal/version"
)

// PanelHandlers serves the resource panel API for the one managed server.
type PanelHandlers struct {
	ServerName string
	ViewModel  *panel.ViewModel
	Hub        *middleware.Hub
	Logger     *utils.Logger
}

func NewPanelHandlers(serverName string, vm *panel.ViewModel, hub *middleware.Hub, logger *utils.Logger) *PanelHandlers {
	return &PanelHandlers{
		ServerName: serverName,
		ViewModel:  vm,
		Hub:        hub,
		Logger:     logger,
	}
}

// GetServer returns the server record name plus the current display model.
func (h *PanelHandlers) GetServer(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":  h.ServerName,
		"model": h.ViewModel.Model(),
	})
}

// GetResources returns the latest raw resource snapshot.
func (h *PanelHandlers) GetResources(c *gin.Context) {
	c.JSON(http.StatusOK, h.ViewModel.Snapshot())
}

// Health reports process liveness, build version, and connected browsers.
func (h *PanelHandlers) Health(c *gin.Context) {
	payload := gin.H{
		"status":  "ok",
		"version": version.String(),
	}
	if h.Hub != nil {
		payload["ws_clients"] = h.Hub.GetClientCount()
	}
	c.JSON(http.StatusOK, payload)
}
