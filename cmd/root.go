package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ibuy",
		Short:         "ibuy marketplace client: browse listings and chat with sellers",
		Long:          "ibuy talks to an ibuy marketplace backend from the terminal: sign in, browse and list products, and chat with buyers and sellers in real time.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		return app.close()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newRegisterCmd(app),
		newCategoriesCmd(app),
		newStatusesCmd(app),
		newProductsCmd(app),
		newProductCmd(app),
		newChatsCmd(app),
		newChatCmd(app),
		newWatchCmd(app),
	)

	return rootCmd
}
