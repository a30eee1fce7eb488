package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Thiahho/Resto-Bar-sub001/kds"
	"github.com/Thiahho/Resto-Bar-sub001/middlewares"
	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

type KDSController struct {
	Hub      *kds.Hub
	upgrader websocket.Upgrader
}

// NewKDSController accepts websocket upgrades from the given origins; an
// empty list or "*" accepts any origin.
func NewKDSController(hub *kds.Hub, origins []string) *KDSController {
	allowed := make(map[string]bool, len(origins))
	anyOrigin := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			anyOrigin = true
		}
		allowed[strings.TrimRight(o, "/")] = true
	}
	return &KDSController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return anyOrigin || origin == "" || allowed[origin]
			},
		},
	}
}

// Serve -> GET /ws?token=&station=
func (kc *KDSController) Serve(c *gin.Context) {
	claims := middlewares.StaffClaimsFrom(c)
	if claims == nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := kc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.WithField("user_id", claims.UserID).Warnf("websocket upgrade: %v", err)
		return
	}

	client := kds.NewClient(kc.Hub, ws, claims.Role, claims.UserID, claims.BranchID)
	kc.Hub.Register(client)
	for _, topic := range kds.DefaultTopics(claims.Role, claims.BranchID, c.Query("station")) {
		kc.Hub.Subscribe(client, topic)
	}

	go client.WritePump()
	client.ReadPump()
}
