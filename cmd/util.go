package cmd

import (
	"fmt"
	"os"

	"github.com/shenwei356/go-logging"
	"github.com/spf13/cobra"
)

var log = logging.MustGetLogger("FragGeneScanRs")

// checkError prints a fatal error and exits; it is the teacher idiom for
// "this should never happen in normal operation, but if it does there's
// nothing more useful to do than stop".
func checkError(err error) {
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func getFlagString(cmd *cobra.Command, name string) string {
	s, err := cmd.Flags().GetString(name)
	checkError(err)
	return s
}

func getFlagInt(cmd *cobra.Command, name string) int {
	i, err := cmd.Flags().GetInt(name)
	checkError(err)
	return i
}

func getFlagPositiveInt(cmd *cobra.Command, name string) int {
	i := getFlagInt(cmd, name)
	if i <= 0 {
		checkError(fmt.Errorf("value of flag --%s should be a positive integer", name))
	}
	return i
}

func getFlagBool(cmd *cobra.Command, name string) bool {
	b, err := cmd.Flags().GetBool(name)
	checkError(err)
	return b
}

