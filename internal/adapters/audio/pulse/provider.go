package pulse

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/bnema/volmix/internal/domain"
	"github.com/bnema/volmix/internal/ports"
	"github.com/jfreymuth/pulse/proto"
)

const (
	clientName = "volmix"

	// normVolume is PA_VOLUME_NORM, the channel value for 100%.
	normVolume = 0x10000

	propProcessBinary = "application.process.binary"
	propProcessID     = "application.process.id"
	propAppName       = "application.name"
)

var errNoChannels = errors.New("volume has no channels")

// Provider talks the PulseAudio native protocol, which PipeWire also
// serves. Sink inputs are sessions and the default sink is the master.
type Provider struct {
	client *proto.Client
	conn   net.Conn
}

var _ ports.AudioSessionProvider = (*Provider)(nil)

// Connect dials the server named by server, or the default one when empty.
func Connect(server string) (*Provider, error) {
	client, conn, err := proto.Connect(server)
	if err != nil {
		return nil, fmt.Errorf("connect to pulse server: %w", err)
	}

	request := proto.SetClientName{
		Props: proto.PropList{
			"application.name": proto.PropListString(clientName),
		},
	}
	reply := proto.SetClientNameReply{}
	if err := client.Request(&request, &reply); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("set pulse client name: %w", err)
	}

	return &Provider{client: client, conn: conn}, nil
}

func (p *Provider) Close() error {
	return p.conn.Close()
}

func (p *Provider) Sessions(ctx context.Context) ([]domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	request := proto.GetSinkInputInfoList{}
	reply := proto.GetSinkInputInfoListReply{}
	if err := p.client.Request(&request, &reply); err != nil {
		return nil, fmt.Errorf("list sink inputs: %w", err)
	}

	sessions := make([]domain.Session, 0, len(reply))
	for _, info := range reply {
		if info == nil {
			continue
		}

		binary, ok := info.Properties[propProcessBinary]
		if !ok {
			continue
		}

		session := domain.Session{
			ID:          sessionID(info.SinkInputIndex),
			ProcessName: domain.NormalizeProcessName(binary.String()),
		}
		if pid, ok := info.Properties[propProcessID]; ok {
			session.PID, _ = strconv.Atoi(pid.String())
		}
		if name, ok := info.Properties[propAppName]; ok {
			session.DisplayName = name.String()
		}

		sessions = append(sessions, session)
	}

	return sessions, nil
}

func (p *Provider) SessionVolume(ctx context.Context, id domain.SessionID) (float64, error) {
	info, err := p.sinkInput(ctx, id)
	if err != nil {
		return 0, err
	}
	return averageVolume(info.ChannelVolumes)
}

func (p *Provider) SetSessionVolume(ctx context.Context, id domain.SessionID, volume float64) error {
	info, err := p.sinkInput(ctx, id)
	if err != nil {
		return err
	}

	request := proto.SetSinkInputVolume{
		SinkInputIndex: info.SinkInputIndex,
		ChannelVolumes: channelVolumes(len(info.ChannelVolumes), volume),
	}
	if err := p.client.Request(&request, nil); err != nil {
		return fmt.Errorf("set sink input %s volume: %w", id, err)
	}
	return nil
}

func (p *Provider) MasterVolume(ctx context.Context) (float64, error) {
	info, err := p.defaultSink(ctx)
	if err != nil {
		return 0, err
	}
	return averageVolume(info.ChannelVolumes)
}

func (p *Provider) SetMasterVolume(ctx context.Context, volume float64) error {
	info, err := p.defaultSink(ctx)
	if err != nil {
		return err
	}

	request := proto.SetSinkVolume{
		SinkIndex:      info.SinkIndex,
		ChannelVolumes: channelVolumes(len(info.ChannelVolumes), volume),
	}
	if err := p.client.Request(&request, nil); err != nil {
		return fmt.Errorf("set default sink volume: %w", err)
	}
	return nil
}

func (p *Provider) sinkInput(ctx context.Context, id domain.SessionID) (*proto.GetSinkInputInfoReply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index, err := strconv.ParseUint(string(id), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid sink input id %q", domain.ErrSessionNotFound, id)
	}

	request := proto.GetSinkInputInfo{SinkInputIndex: uint32(index)}
	reply := proto.GetSinkInputInfoReply{}
	if err := p.client.Request(&request, &reply); err != nil {
		return nil, fmt.Errorf("%w: sink input %s: %w", domain.ErrSessionNotFound, id, err)
	}
	return &reply, nil
}

func (p *Provider) defaultSink(ctx context.Context) (*proto.GetSinkInfoReply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	request := proto.GetSinkInfo{SinkIndex: proto.Undefined}
	reply := proto.GetSinkInfoReply{}
	if err := p.client.Request(&request, &reply); err != nil {
		return nil, fmt.Errorf("get default sink: %w", err)
	}
	return &reply, nil
}

func sessionID(index uint32) domain.SessionID {
	return domain.SessionID(strconv.FormatUint(uint64(index), 10))
}

func averageVolume(volumes []uint32) (float64, error) {
	if len(volumes) == 0 {
		return 0, errNoChannels
	}

	var total uint64
	for _, v := range volumes {
		total += uint64(v)
	}
	return float64(total) / float64(len(volumes)) / normVolume, nil
}

func channelVolumes(channels int, volume float64) proto.ChannelVolumes {
	if channels <= 0 {
		channels = 1
	}

	level := uint32(domain.ClampVolume(volume)*normVolume + 0.5)
	volumes := make(proto.ChannelVolumes, channels)
	for i := range volumes {
		volumes[i] = level
	}
	return volumes
}
