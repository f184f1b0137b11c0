package url

import (
	"github.com/synfinatic/aws-sso-profiles/internal/logger"
	"github.com/synfinatic/flexlog"
)

var log flexlog.FlexLogger

func init() {
	log = logger.GetLogger()
}
