package app

import (
	"github.com/tasbeha/deaconschool-backend/internal/pkg/logger"
	"github.com/tasbeha/deaconschool-backend/internal/utils"
)

type Config struct {
	Port             string
	PointsPolicyPath string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:             utils.GetEnv("PORT", "8080", log),
		PointsPolicyPath: utils.GetEnv("POINTS_POLICY_PATH", "", log),
	}
}
