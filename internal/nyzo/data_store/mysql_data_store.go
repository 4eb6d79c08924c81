/*
Records the sentinel's failover block transmissions in a database, for later auditing. Nothing is ever read back,
the sentinel works the same with or without a data store. This is the only package that would have to be changed to
support another type of data store.
*/
package data_store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/logging"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/configuration"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/interfaces"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/router"
	"github.com/pkg/errors"
)

type mySqlState struct {
	ctxt            *interfaces.Context
	db              *sql.DB
	addTransmission *sql.Stmt
}

// Store a transmission to the database. Not fatal on failure, the record is informational only.
func (s *mySqlState) storeTransmission(t *router.BlockTransmission) {
	_, err := s.addTransmission.Exec(t.Height, t.BlockHash, t.VerifierIdentifier, t.Score, t.Recipients, t.Timestamp)
	if err != nil {
		logging.ErrorLog.Printf("Cannot store transmission at height %d: %s.", t.Height, err.Error())
	}
}

// Main loop.
func (s *mySqlState) Start(ctx context.Context) error {
	defer logging.InfoLog.Print("Main loop of MySql data store exited gracefully.")
	logging.InfoLog.Print("Starting main loop of MySql data store.")
	handler := s.storeTransmission
	s.ctxt.Router.SubscribeAsync(router.TopicBlockTransmitted, handler)
	<-ctx.Done()
	s.ctxt.Router.Unsubscribe(router.TopicBlockTransmitted, handler)
	s.ctxt.Router.Wait()
	return s.db.Close()
}

// Initialization function
func (s *mySqlState) Initialize() error {
	var err error
	connection, connectionClean := connectionStrings(s.ctxt.Settings.Sql)
	logging.InfoLog.Printf("Connecting to database: %s.", connectionClean)
	s.db, err = sql.Open("mysql", connection)
	if err != nil {
		return errors.Wrap(err, "cannot open database")
	}
	// create tables if needed
	_, err = s.db.Exec(createTransmissionsTableStatement)
	if err != nil {
		return errors.Wrap(err, "cannot create transmissions table")
	}
	// prepare DB statements
	s.addTransmission, err = s.db.Prepare(addTransmissionStatement)
	if err != nil {
		return errors.Wrap(err, "cannot prepare statement")
	}
	return nil
}

// The DSN, plus a version safe for logging.
func connectionStrings(settings configuration.SqlSettings) (string, string) {
	host := settings.Host
	if strings.TrimSpace(settings.Port) != "" {
		host = fmt.Sprintf("%s:%s", settings.Host, settings.Port)
	}
	format := "%s:%s@%s(%s)/%s?charset=utf8mb4&collation=utf8mb4_unicode_ci"
	return fmt.Sprintf(format, settings.User, settings.Password, settings.Protocol, host, settings.DbName),
		fmt.Sprintf(format, settings.User, "<PASS>", settings.Protocol, host, settings.DbName)
}

// Create a MySql data store.
func NewMysqlDataStore(ctxt *interfaces.Context) interfaces.Component {
	s := &mySqlState{}
	s.ctxt = ctxt
	return s
}
