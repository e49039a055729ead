package cli

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/diillson/aws-compliance-dashboard-go/pkg/version"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(versionStr string) {
	banner := `
    ___ _       _______    ______                       ___                     
   /   | |     / / ___/   / ____/___  ____ ___  ____  / (_)___ _____  ________ 
  / /| | | /| / /\__ \   / /   / __ \/ __ ` + "`" + `__ \/ __ \/ / / __ ` + "`" + `/ __ \/ ___/ _ \
 / ___ | |/ |/ /___/ /  / /___/ /_/ / / / / / / /_/ / / / /_/ / / / / /__/  __/
/_/  |_|__/|__//____/   \____/\____/_/ /_/ /_/ .___/_/_/\__,_/_/ /_/\___/\___/ 
                                            /_/                                 
        `
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(red(banner))

	// Obtem a string formatada da versão através do pacote version
	formattedVersion := version.FormatVersion()
	fmt.Println(blue(fmt.Sprintf("AWS Compliance Dashboard CLI (v%s)", formattedVersion)))
}
