package config

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// 設定全域logrus，輸出JSON格式
func SetupLogger(config Config) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(config.Log.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", config.Log.Level)
	}

	log := logrus.StandardLogger()
	log.SetLevel(level)
	log.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
	})
	return log, nil
}
