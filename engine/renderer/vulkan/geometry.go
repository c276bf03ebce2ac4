package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/softglow/lantern/engine/core"
	"github.com/softglow/lantern/engine/resources"
)

// GeometryBuffers holds the mesh streams as separate device-local
// buffers, one per vertex attribute, plus the 16-bit index buffer.
// The split layout matches the pipeline's three vertex bindings.
type GeometryBuffers struct {
	Positions       *Buffer
	Normals         *Buffer
	MaterialIndices *Buffer
	Indices         *Buffer
	IndexCount      uint32

	resourceID core.ResourceID
}

// GeometryBuffersCreate uploads every mesh stream through staging
// buffers. Geometry is immutable after load, so all four buffers are
// device local with no host access.
func GeometryBuffersCreate(context *Context, pool vk.CommandPool, queue vk.Queue, mesh *resources.Mesh) (*GeometryBuffers, error) {
	if mesh.VertexCount() == 0 || len(mesh.Indices) == 0 {
		return nil, fmt.Errorf("mesh has no geometry to upload")
	}

	geometry := &GeometryBuffers{
		IndexCount: uint32(len(mesh.Indices)),
		resourceID: context.TrackStaticResource("geometry"),
	}

	var err error
	geometry.Positions, err = BufferCreateDeviceLocal(context, pool, queue,
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), sliceBytes(mesh.Positions))
	if err != nil {
		geometry.Destroy(context)
		return nil, fmt.Errorf("uploading positions: %w", err)
	}
	geometry.Normals, err = BufferCreateDeviceLocal(context, pool, queue,
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), sliceBytes(mesh.Normals))
	if err != nil {
		geometry.Destroy(context)
		return nil, fmt.Errorf("uploading normals: %w", err)
	}
	geometry.MaterialIndices, err = BufferCreateDeviceLocal(context, pool, queue,
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), sliceBytes(mesh.MaterialIndices))
	if err != nil {
		geometry.Destroy(context)
		return nil, fmt.Errorf("uploading material indices: %w", err)
	}
	geometry.Indices, err = BufferCreateDeviceLocal(context, pool, queue,
		vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit), sliceBytes(mesh.Indices))
	if err != nil {
		geometry.Destroy(context)
		return nil, fmt.Errorf("uploading indices: %w", err)
	}

	core.LogDebug("uploaded geometry: %d vertices, %d indices", mesh.VertexCount(), geometry.IndexCount)
	return geometry, nil
}

func (g *GeometryBuffers) Destroy(context *Context) {
	if g == nil {
		return
	}
	g.Positions.Destroy(context)
	g.Normals.Destroy(context)
	g.MaterialIndices.Destroy(context)
	g.Indices.Destroy(context)
	context.ReleaseResource(g.resourceID)
}

// Bind attaches all three vertex streams in pipeline binding order and
// the index buffer. Shadow passes bind positions only.
func (g *GeometryBuffers) Bind(commandBuffer vk.CommandBuffer) {
	buffers := []vk.Buffer{g.Positions.Handle, g.Normals.Handle, g.MaterialIndices.Handle}
	offsets := []vk.DeviceSize{0, 0, 0}
	vk.CmdBindVertexBuffers(commandBuffer, 0, uint32(len(buffers)), buffers, offsets)
	vk.CmdBindIndexBuffer(commandBuffer, g.Indices.Handle, 0, vk.IndexTypeUint16)
}

// BindPositionsOnly attaches the position stream alone for depth-only
// rendering.
func (g *GeometryBuffers) BindPositionsOnly(commandBuffer vk.CommandBuffer) {
	vk.CmdBindVertexBuffers(commandBuffer, 0, 1, []vk.Buffer{g.Positions.Handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(commandBuffer, g.Indices.Handle, 0, vk.IndexTypeUint16)
}
