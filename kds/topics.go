package kds

import (
	"fmt"
	"strings"

	"github.com/Thiahho/Resto-Bar-sub001/models"
)

const (
	TopicAdmins        = "admins"
	branchTopicPrefix  = "admins:branch:"
	stationTopicPrefix = "Kitchen_"
)

func BranchTopic(branchID uint) string {
	return fmt.Sprintf("%s%d", branchTopicPrefix, branchID)
}

func StationTopic(station models.Station) string {
	return stationTopicPrefix + string(station)
}

func IsStationTopic(topic string) bool {
	return strings.HasPrefix(topic, stationTopicPrefix)
}

// CanJoin decides whether a connection with the given role may subscribe to topic.
// ADMIN joins anything, WAITER the admin topics of its own branch, KITCHEN only stations.
func CanJoin(role string, branchID *uint, topic string) bool {
	switch {
	case IsStationTopic(topic):
		if _, ok := models.ParseStation(strings.TrimPrefix(topic, stationTopicPrefix)); !ok {
			return false
		}
		return role == models.RoleAdmin || role == models.RoleKitchen
	case topic == TopicAdmins:
		return role == models.RoleAdmin || role == models.RoleWaiter
	case strings.HasPrefix(topic, branchTopicPrefix):
		if role == models.RoleAdmin {
			return true
		}
		return role == models.RoleWaiter && branchID != nil && topic == BranchTopic(*branchID)
	}
	return false
}

// DefaultTopics are joined on connect.
func DefaultTopics(role string, branchID *uint, station string) []string {
	var topics []string
	switch role {
	case models.RoleAdmin, models.RoleWaiter:
		topics = append(topics, TopicAdmins)
		if branchID != nil {
			topics = append(topics, BranchTopic(*branchID))
		}
	}
	if st, ok := models.ParseStation(station); ok && (role == models.RoleKitchen || role == models.RoleAdmin) {
		topics = append(topics, StationTopic(st))
	}
	return topics
}
