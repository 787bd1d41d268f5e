/*
Package mining implements halving mining pools. A pool pays a fixed amount to
its receiver each time one of its operators requests a withdrawal.

Pool funding is distributed in rounds. The first round capacity is half of the
total funding and each following round takes half of the funding that is not
yet assigned to any round. A round is opened when the previous one is fully
withdrawn. Distribution stops once halving yields nothing.

Pool funds are held by a custody wallet derived from the pool ID and moved
using the cash extension.
*/
package mining
