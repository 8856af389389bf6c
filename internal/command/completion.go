// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/awsctl/awsctl/internal/meta"
)

const bashCompletionScript = `# bash completion for awsctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_awsctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "iq inv run sh cp completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
  local common="--attrs -a --color -c --filter -f --output -o --sort -s --titles -t --tldr"
  local aws="--region -r --profile --access-key-id --secret-access-key --session-token --validate-credentials"
  local ssm="$aws --plugin --document-name --retries --ssm-timeout"
  local shape="--regions --include-clusters --statuses --aws-filter --strict-permissions --strict --keyed-group --group --compose --cache --cache-timeout --cache-prefix --passphrase -p"

    case "$cmd" in
    iq)
      local opts="$common --schema $shape $aws --diff"
            ;;
        inv)
      local opts="$common --schema $shape $aws"
            ;;
        run)
      local opts="--tldr $ssm"
            ;;
        sh)
      local opts="--tldr $ssm $shape"
            ;;
        cp)
      local opts="--tldr $ssm --bucket -b"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

  # If current token starts with '-', offer flags
  if [[ "$cur" == -* ]]; then
    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
  fi

  # Otherwise we're on a positional (target or path) - complete filenames
  COMPREPLY=( $(compgen -o default -- "$cur") )
  return 0
}

complete -F _awsctl awsctl
`

const zshCompletionScript = `#compdef awsctl

_awsctl() {
  local -a cmds
  cmds=(
    'iq:inventory query'
    'inv:grouped inventory document'
    'run:execute a command over Session Manager'
    'sh:interactive Session Manager shell'
    'cp:copy files through the S3 staging bucket'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  )

  local -a aws
  aws=(
  '(-r --region)'{-r,--region}'[region]:region'
  '--profile[shared credentials profile]:profile'
  '--access-key-id[static access key id]:id'
  '--secret-access-key[static secret access key]:key'
  '--session-token[static session token]:token'
  '--validate-credentials[preflight with sts GetCallerIdentity]'
  )

  local -a ssm
  ssm=(
  $aws
  '--plugin[session-manager-plugin path]:plugin:_files'
  '--document-name[SSM document]:document'
  '--retries[session open attempts]:retries'
  '--ssm-timeout[remote command timeout seconds]:seconds'
  )

  local -a shape
  shape=(
  '--regions[regions to enumerate]:regions'
  '--include-clusters[also enumerate Aurora clusters]'
  '--statuses[statuses to include]:statuses'
  '--aws-filter[server-side describe filter]:filter'
  '--strict-permissions[AccessDenied is fatal]'
  '--strict[expression errors are fatal]'
  '--keyed-group[keyed group spec]:spec'
  '--group[conditional group NAME=EXPR]:spec'
  '--compose[derived hostvar VAR=EXPR]:spec'
  '--cache[use the snapshot cache]'
  '--cache-timeout[snapshot freshness seconds]:seconds'
  '--cache-prefix[cache subdirectory]:prefix'
  '(-p --passphrase)'{-p,--passphrase}'[snapshot passphrase]:passphrase'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'awsctl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    iq)
      _arguments -C \
        $common \
        $shape \
        $aws \
        '--schema[dump schema]' \
        '--diff[report drift against the cached snapshot]'
      ;;
    inv)
      _arguments -C \
        $common \
        $shape \
        $aws \
        '--schema[dump schema]'
      ;;
    run)
      _arguments -C \
        $ssm \
        '--tldr[show tldr page]' \
        '1:target:' \
        '*:command:'
      ;;
    sh)
      _arguments -C \
        $ssm \
        $shape \
        '--tldr[show tldr page]' \
        '::target:'
      ;;
    cp)
      _arguments -C \
        $ssm \
        '--tldr[show tldr page]' \
        '(-b --bucket)'{-b,--bucket}'[S3 staging bucket]:bucket' \
        '1:source:_files' \
        '2:destination:_files'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _awsctl awsctl awsctl
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(os.Stdout, bashCompletionScript)
	case "zsh":
		fmt.Fprint(os.Stdout, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			fmt.Fprint(os.Stdout, zshCompletionScript)
		case strings.HasSuffix(sh, "bash"):
			fmt.Fprint(os.Stdout, bashCompletionScript)
		default:
			fmt.Fprintln(os.Stderr, "usage: awsctl completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "awsctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
