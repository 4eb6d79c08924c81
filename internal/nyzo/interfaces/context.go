/*
Context summarizes the various components of a sentinel process.
*/
package interfaces

import (
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/configuration"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/router"
	"github.com/n-y-z-o/nyzoVerifier-sub001/pkg/identity"
)

type Context struct {
	Identity           *identity.Identity // the sentinel's own identity, signs requests
	Settings           *configuration.Settings
	Router             *router.Router
	ChainState         ChainStateInterface
	TransactionManager TransactionManagerInterface
	Transport          TransportInterface
	Sentinel           SentinelInterface
	DataStore          Component
	Api                Component
}
