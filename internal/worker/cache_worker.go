package worker

import (
	"github.com/spec-kit/hospital-directory/internal/service"
)

// StartCacheInvalidationWorker registers the cache invalidation handlers.
func StartCacheInvalidationWorker(invalidation *service.CacheInvalidationService) {
	if invalidation == nil {
		return
	}
	invalidation.RegisterHandlers()
}
