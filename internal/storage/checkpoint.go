package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/latticeflow/internal/lattice"
	"github.com/san-kum/latticeflow/internal/lbm"
)

var (
	// ErrNoCheckpoint means nothing was saved at the requested path.
	ErrNoCheckpoint = errors.New("storage: no checkpoint")
	// ErrCheckpointFormat means a checkpoint exists but cannot be decoded.
	ErrCheckpointFormat = errors.New("storage: malformed checkpoint")
)

const (
	stateFile  = "lb.state"
	backupFile = "lb-backup.state"
)

// WriteState encodes a state as a timestep line followed by one value per
// line, looping x, then y, then direction.
func WriteState(w io.Writer, nx, ny int, st lbm.State) error {
	if len(st.F) != nx*ny*lattice.Q {
		return fmt.Errorf("%w: %d values for %dx%d", lbm.ErrStateSize, len(st.F), nx, ny)
	}
	bw := bufio.NewWriter(w)
	bw.WriteString(strconv.Itoa(st.Timestep))
	bw.WriteByte('\n')
	buf := make([]byte, 0, 32)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			k := (j*nx + i) * lattice.Q
			for q := 0; q < lattice.Q; q++ {
				buf = strconv.AppendFloat(buf[:0], st.F[k+q], 'e', -1, 64)
				buf = append(buf, '\n')
				if _, err := bw.Write(buf); err != nil {
					return err
				}
			}
		}
	}
	return bw.Flush()
}

// ReadState decodes a state written by WriteState for an nx by ny grid.
func ReadState(r io.Reader, nx, ny int) (lbm.State, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	if !sc.Scan() {
		return lbm.State{}, fmt.Errorf("%w: missing timestep", ErrCheckpointFormat)
	}
	ts, err := strconv.ParseFloat(sc.Text(), 64)
	if err != nil {
		return lbm.State{}, fmt.Errorf("%w: timestep: %v", ErrCheckpointFormat, err)
	}

	st := lbm.State{Timestep: int(ts), F: make([]float64, nx*ny*lattice.Q)}
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			k := (j*nx + i) * lattice.Q
			for q := 0; q < lattice.Q; q++ {
				if !sc.Scan() {
					return lbm.State{}, fmt.Errorf("%w: truncated at node (%d,%d) q=%d",
						ErrCheckpointFormat, i, j, q)
				}
				v, err := strconv.ParseFloat(sc.Text(), 64)
				if err != nil {
					return lbm.State{}, fmt.Errorf("%w: node (%d,%d) q=%d: %v",
						ErrCheckpointFormat, i, j, q, err)
				}
				st.F[k+q] = v
			}
		}
	}
	if err := sc.Err(); err != nil {
		return lbm.State{}, err
	}
	return st, nil
}

func writeStateFile(path string, nx, ny int, st lbm.State) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := WriteState(f, nx, ny, st); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// LoadState reads a checkpoint file. A missing file yields ErrNoCheckpoint.
func LoadState(path string, nx, ny int) (lbm.State, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lbm.State{}, fmt.Errorf("%w: %s", ErrNoCheckpoint, path)
		}
		return lbm.State{}, err
	}
	defer f.Close()
	st, err := ReadState(f, nx, ny)
	if err != nil {
		return lbm.State{}, fmt.Errorf("%s: %w", path, err)
	}
	return st, nil
}

// CheckpointPath is the rolling checkpoint of the run.
func (r *Run) CheckpointPath() string { return filepath.Join(r.DataDir(), stateFile) }

// SaveCheckpoint overwrites the rolling checkpoint.
func (r *Run) SaveCheckpoint(nx, ny int, st lbm.State) error {
	return writeStateFile(r.CheckpointPath(), nx, ny, st)
}

// SaveHistory writes a numbered copy that is never overwritten by later steps.
func (r *Run) SaveHistory(nx, ny int, st lbm.State) (string, error) {
	path := filepath.Join(r.DataDir(), fmt.Sprintf("lb_%06d.state", st.Timestep))
	return path, writeStateFile(path, nx, ny, st)
}

// Backup copies a loaded state aside before a resumed run overwrites the
// rolling checkpoint. Older backups are kept with a timestamp suffix.
func (r *Run) Backup(nx, ny int, st lbm.State) (string, error) {
	path := filepath.Join(r.DataDir(), backupFile)
	if _, err := os.Stat(path); err == nil {
		old := fmt.Sprintf("%s.%s", path, time.Now().Format("20060102T150405"))
		if err := os.Rename(path, old); err != nil {
			return "", err
		}
	}
	return path, writeStateFile(path, nx, ny, st)
}

// LoadCheckpoint reads path, or the rolling checkpoint when path is empty.
func (r *Run) LoadCheckpoint(path string, nx, ny int) (lbm.State, error) {
	if path == "" {
		path = r.CheckpointPath()
	}
	return LoadState(path, nx, ny)
}
