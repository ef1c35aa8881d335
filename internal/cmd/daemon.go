package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"health-report/internal/config"
	"health-report/internal/scheduler"
)

var daemonConfigPath string

const stopPollInterval = 500 * time.Millisecond

func NewDaemonCmd() *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the report scheduler in the background (start/stop/restart/status)",
	}
	daemonCmd.PersistentFlags().StringVarP(&daemonConfigPath, "config", "c", "", "Path to config file")

	daemonCmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start the background scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return daemonStart(cmd.OutOrStdout(), defaultPidFile())
		},
	})
	daemonCmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the background scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return daemonStop(cmd.OutOrStdout(), defaultPidFile())
		},
	})
	daemonCmd.AddCommand(&cobra.Command{
		Use:   "restart",
		Short: "Restart the background scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			pf := defaultPidFile()
			if err := daemonStop(out, pf); err != nil {
				fmt.Fprintf(out, "Warning: %v\n", err)
			}
			return daemonStart(out, pf)
		},
	})
	daemonCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether the scheduler runs and when the next report is due",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(daemonConfigPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return daemonStatus(cmd.OutOrStdout(), defaultPidFile(), cfg, time.Now())
		},
	})

	return daemonCmd
}

// pidFile records the background scheduler's process id. Its modification
// time is when the scheduler was started.
type pidFile string

func defaultPidFile() pidFile {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./health-report.pid"
	}
	return pidFile(filepath.Join(homeDir, ".health-report.pid"))
}

func (p pidFile) read() (pid int, started time.Time, err error) {
	data, err := os.ReadFile(string(p))
	if err != nil {
		return 0, time.Time{}, err
	}
	pid, err = strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("corrupt PID file %s: %w", p, err)
	}
	info, err := os.Stat(string(p))
	if err != nil {
		return 0, time.Time{}, err
	}
	return pid, info.ModTime(), nil
}

func (p pidFile) write(pid int) error {
	return os.WriteFile(string(p), []byte(strconv.Itoa(pid)), 0644)
}

// remove deletes the file; a file that is already gone is not an error.
func (p pidFile) remove() error {
	if err := os.Remove(string(p)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// running reports the live scheduler's pid, clearing a stale file on the way.
func (p pidFile) running() (int, time.Time, bool, error) {
	pid, started, err := p.read()
	if errors.Is(err, fs.ErrNotExist) {
		return 0, time.Time{}, false, nil
	}
	if err != nil {
		return 0, time.Time{}, false, err
	}
	if !isProcessRunning(pid) {
		return pid, started, false, p.remove()
	}
	return pid, started, true, nil
}

func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// daemonLogFile is where the scheduler's stdout goes: log.file_path when set,
// otherwise health-report.log in the working directory.
func daemonLogFile(cfg *config.Config) string {
	if cfg != nil && cfg.Log.FilePath != "" {
		return cfg.Log.FilePath
	}
	workDir, err := os.Getwd()
	if err != nil {
		return "./health-report.log"
	}
	return filepath.Join(workDir, "health-report.log")
}

func daemonStart(out io.Writer, pf pidFile) error {
	pid, _, running, err := pf.running()
	if err != nil {
		return err
	}
	if running {
		return fmt.Errorf("daemon is already running (PID: %d)", pid)
	}

	cfg, err := config.Load(daemonConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	logFile := daemonLogFile(cfg)
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logFileHandle, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFileHandle.Close()

	cmdArgs := []string{"start"}
	if daemonConfigPath != "" {
		cmdArgs = append(cmdArgs, "--config", daemonConfigPath)
	}

	processCmd := exec.Command(executable, cmdArgs...)
	processCmd.Stdout = logFileHandle
	processCmd.Stderr = logFileHandle
	if processCmd.Dir, err = os.Getwd(); err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	if err := processCmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	if err := pf.write(processCmd.Process.Pid); err != nil {
		if killErr := processCmd.Process.Kill(); killErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to kill daemon: %w", killErr))
		}
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	fmt.Fprintf(out, "Daemon started (PID: %d, Log: %s)\n", processCmd.Process.Pid, logFile)
	return nil
}

// daemonStop sends SIGTERM so the scheduler can finish an in-flight report,
// and falls back to SIGKILL after five seconds.
func daemonStop(out io.Writer, pf pidFile) error {
	pid, _, running, err := pf.running()
	if err != nil {
		return err
	}
	if !running {
		return fmt.Errorf("daemon is not running")
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM: %w", err)
	}

	for i := 0; i < 10; i++ {
		time.Sleep(stopPollInterval)
		if !isProcessRunning(pid) {
			fmt.Fprintf(out, "Daemon stopped (PID: %d)\n", pid)
			return pf.remove()
		}
	}

	if err := process.Signal(syscall.SIGKILL); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to send SIGKILL: %w", err)
	}
	time.Sleep(stopPollInterval)
	fmt.Fprintf(out, "Daemon force stopped (PID: %d)\n", pid)
	return pf.remove()
}

func daemonStatus(out io.Writer, pf pidFile, cfg *config.Config, now time.Time) error {
	pid, started, running, err := pf.running()
	if err != nil {
		return err
	}
	if !running {
		if pid != 0 {
			fmt.Fprintln(out, "Status: Not running (stale PID file removed)")
		} else {
			fmt.Fprintln(out, "Status: Not running")
		}
		return nil
	}

	fmt.Fprintf(out, "Status: Running (PID: %d)\n", pid)
	fmt.Fprintf(out, "Started: %s\n", started.Format(time.RFC3339))
	fmt.Fprintf(out, "PID file: %s\n", string(pf))
	fmt.Fprintf(out, "Log file: %s\n", daemonLogFile(cfg))

	loc, err := cfg.Report.Location()
	if err != nil {
		return err
	}
	next, err := scheduler.NextRun(cfg.Schedule, loc, started, now)
	if err != nil {
		fmt.Fprintf(out, "Next report: unknown (%v)\n", err)
		return nil
	}
	fmt.Fprintf(out, "Next report: %s\n", next.In(loc).Format("2006-01-02 15:04:05 MST"))
	return nil
}
