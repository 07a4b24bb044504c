package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

const completionCommands = "translate teach validate fmt lint profile script schema guard completion relay demo"

func cmdCompletion(args []string) int {
	shell := ""
	if len(args) > 0 {
		shell = args[0]
	}
	if shell == "" {
		shell = detectShell()
	}
	script, err := completionScript(shell)
	if err != nil {
		return fail(err)
	}
	fmt.Print(script)
	return 0
}

func detectShell() string {
	if runtime.GOOS == "windows" {
		return "powershell"
	}
	if strings.HasSuffix(os.Getenv("SHELL"), "zsh") {
		return "zsh"
	}
	return "bash"
}

func completionScript(shell string) (string, error) {
	switch shell {
	case "bash":
		return `# bash completion for choom
_choom_complete() {
  local cur prev words cword
  _init_completion || return
  local cmds="` + completionCommands + `"
  if [[ $cword -eq 1 ]]; then
    COMPREPLY=( $(compgen -W "$cmds" -- "$cur") )
    return
  fi
}
complete -F _choom_complete choom
`, nil
	case "zsh":
		return `#compdef choom
_arguments '1:command:(` + completionCommands + `)'
`, nil
	case "powershell":
		return `Register-ArgumentCompleter -CommandName choom -ScriptBlock {
  param($wordToComplete, $commandAst, $cursorPosition)
  '` + strings.Join(strings.Fields(completionCommands), "','") + `' |
    Where-Object { $_ -like "$wordToComplete*" } |
    ForEach-Object { [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_) }
}
`, nil
	}
	return "", fmt.Errorf("shell must be one of: bash, zsh, powershell")
}
