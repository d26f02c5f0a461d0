package tokenizerddb

import (
	tokenizercli "github.com/tokenizer-systems/tokenizer-go/tokenizer-cli"
	"github.com/urfave/cli/v2"
)

var DDBOpts struct {
	DAXCluster  string
	QueuesTable string
	UsersTable  string
}

var DAXClusterFlag = tokenizercli.StringFlag("dax-cluster", "The DAX cluster to connect to", &DDBOpts.DAXCluster)
var QueuesTableFlag = tokenizercli.StringFlag("queues-table", "Override for the queues table name", &DDBOpts.QueuesTable)
var UsersTableFlag = tokenizercli.StringFlag("users-table", "Override for the user subscriptions table name", &DDBOpts.UsersTable)

var DDBFlags = []cli.Flag{
	DAXClusterFlag,
	QueuesTableFlag,
	UsersTableFlag,
}
